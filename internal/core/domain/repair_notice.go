package domain

// RepairNotice tells the caller that a client's stored filings were corrected on load.
type RepairNotice struct {
	RepairedCount int `json:"repairedCount"`
	DroppedCount  int `json:"droppedCount"`
	// PartialCount counts filings kept with fields that could not be read. The record is then left untouched.
	PartialCount int      `json:"partialCount,omitempty"`
	Seeded       bool     `json:"seeded"`
	Errors       []string `json:"errors,omitempty"`
	// Persisted is false when writing the corrected list back failed; the next load retries.
	Persisted bool `json:"persisted"`
}
