package domain

import (
	"bytes"
	"time"

	json "github.com/goccy/go-json"
)

// storedTimeLayouts are the layouts accepted when reading filing timestamps.
var storedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// Timestamp is a filing instant. It is written as RFC 3339. A stored value that
// cannot be read as a time is kept verbatim and written back unchanged.
type Timestamp struct {
	time.Time
	raw string
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// AtPtr returns a pointer to At(t).
func AtPtr(t time.Time) *Timestamp {
	ts := At(t)
	return &ts
}

// Raw returns the stored JSON text of an unreadable value, or "" when the value parsed.
func (t Timestamp) Raw() string {
	return t.raw
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.raw != "" {
		return []byte(t.raw), nil
	}
	return t.Time.MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		for _, layout := range storedTimeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				*t = Timestamp{Time: parsed}
				return nil
			}
		}
	}
	*t = Timestamp{raw: string(data)}
	return nil
}
