// Package repair detects and corrects malformed tax filing records read from storage.
//
// A known corruption mode stored a nested pricing object in place of the filing year,
// e.g. {"year": {"year": 2025, "pricingPresetId": "p1"}, ...}. Repair extracts the real
// year, moves the preset id into the payment block and drops entries that cannot be
// recovered. Entries are dropped only for structural faults (not an object, no numeric
// year, no status); a field that merely fails to decode never costs the entry.
// The functions here are pure; persisting the result is up to the caller.
package repair

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/tax_filing_app/internal/core/domain"
	json "github.com/goccy/go-json"
)

// DefaultCurrency is used when a payment block has to be synthesised during repair.
const DefaultCurrency = "CAD"

// Result is the outcome of repairing one client's filing list.
type Result struct {
	Filings       []domain.TaxFiling
	RepairedCount int
	DroppedCount  int
	Errors        []string
	// Seeded is true when no valid filing survived and the default pair was created.
	Seeded bool
	// InputCount is the number of raw entries examined.
	InputCount int
	// PartialCount counts kept entries with fields that could not be decoded.
	// Writing such a result back would lose those fields.
	PartialCount int
}

// Changed reports whether the result differs from what was stored.
func (r Result) Changed() bool {
	return r.RepairedCount > 0 || r.Seeded || len(r.Filings) != r.InputCount
}

// SafeToPersist reports whether writing Filings back loses nothing but the dropped entries.
func (r Result) SafeToPersist() bool {
	return r.PartialCount == 0
}

// FromJSON decodes a stored filing array and repairs it. Empty or null input yields the default filings.
func FromJSON(data []byte, now time.Time) (Result, error) {
	var raw []any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &raw); err != nil {
			return Result{}, fmt.Errorf("failed to decode filing list: %w", err)
		}
	}
	return Filings(raw, now), nil
}

// Filings repairs a list of generic filing values as produced by a JSON decoder.
func Filings(raw []any, now time.Time) Result {
	res := Result{InputCount: len(raw)}

	for i, value := range raw {
		entry, ok := value.(map[string]any)
		if !ok || entry == nil {
			res.drop(i, fmt.Errorf("not an object"))
			continue
		}

		// Work on a copy so the caller's value is never mutated.
		entry = maps.Clone(entry)

		repaired, err := repairNestedYear(entry)
		if err != nil {
			res.drop(i, err)
			continue
		}
		if err := validate(entry); err != nil {
			res.drop(i, err)
			continue
		}

		filing, unreadable := decode(entry)
		if len(unreadable) > 0 {
			res.PartialCount++
			res.Errors = append(res.Errors, fmt.Sprintf("entry %d: kept without unreadable fields %s", i, strings.Join(unreadable, ", ")))
		}

		if repaired {
			res.RepairedCount++
		}
		res.Filings = append(res.Filings, filing)
	}

	if len(res.Filings) == 0 {
		res.Filings = domain.DefaultFilings(now)
		res.Seeded = true
	}
	return res
}

// repairNestedYear fixes entries whose year is an object. It reports whether the entry was changed.
func repairNestedYear(entry map[string]any) (bool, error) {
	nested, ok := entry["year"].(map[string]any)
	if !ok {
		return false, nil
	}

	actualYear, ok := finiteNumber(nested["year"])
	if !ok {
		return false, fmt.Errorf("year is an object without a numeric year")
	}
	entry["year"] = actualYear

	if presetID, ok := nested["pricingPresetId"]; ok && presetID != nil {
		if _, hasPayment := entry["payment"]; !hasPayment {
			entry["payment"] = map[string]any{
				"status":          string(domain.PaymentPending),
				"amount":          0,
				"currency":        DefaultCurrency,
				"pricingPresetId": presetID,
				"createdAt":       entry["createdAt"],
			}
		}
	}
	return true, nil
}

func (r *Result) drop(i int, err error) {
	r.DroppedCount++
	r.Errors = append(r.Errors, fmt.Sprintf("entry %d: %v", i, err))
}

// validate checks the structural invariants of an entry. These are the only grounds for dropping it.
func validate(entry map[string]any) error {
	if isBarePricingStub(entry) {
		return fmt.Errorf("pricing stub without status")
	}

	year, ok := finiteNumber(entry["year"])
	if !ok {
		return fmt.Errorf("year is not a number")
	}
	if year != math.Trunc(year) {
		return fmt.Errorf("year %v is not an integer", year)
	}

	status, ok := entry["status"].(string)
	if !ok || status == "" {
		return fmt.Errorf("missing status")
	}
	return nil
}

// decode turns a valid entry into a filing. When the entry as a whole does not decode,
// fields are decoded one at a time and the names of those that failed are returned.
func decode(entry map[string]any) (domain.TaxFiling, []string) {
	var filing domain.TaxFiling
	if data, err := json.Marshal(entry); err == nil {
		if err := json.Unmarshal(data, &filing); err == nil {
			return filing, nil
		}
	}

	filing = domain.TaxFiling{}
	var unreadable []string
	keys := make([]string, 0, len(entry))
	for key := range entry {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		data, err := json.Marshal(map[string]any{key: entry[key]})
		if err == nil {
			var field domain.TaxFiling
			if err = json.Unmarshal(data, &field); err == nil {
				err = json.Unmarshal(data, &filing)
			}
		}
		if err != nil {
			unreadable = append(unreadable, key)
		}
	}
	return filing, unreadable
}

// isBarePricingStub matches entries whose key set is exactly {year, pricingPresetId}.
func isBarePricingStub(entry map[string]any) bool {
	if len(entry) != 2 {
		return false
	}
	_, hasYear := entry["year"]
	_, hasPreset := entry["pricingPresetId"]
	return hasYear && hasPreset
}

func finiteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
