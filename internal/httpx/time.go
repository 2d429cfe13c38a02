package httpx

import (
	"encoding/json"
	"fmt"
	"time"
)

// requestTimeFormats are tried in order. The zone-less forms are what an
// HTML datetime-local input submits.
var requestTimeFormats = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Time is a timestamp in a request body. It accepts RFC 3339 and the
// zone-less datetime-local forms, which are read in the server's zone.
type Time struct {
	time.Time
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range requestTimeFormats {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := parseTime(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Std returns the wrapped time, or nil when t is nil.
func (t *Time) Std() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
