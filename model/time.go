package model

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Time accepts the timestamps the API emits, which may lack a zone offset
// (naive UTC), and always encodes as RFC 3339.
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func NewTime(t time.Time) Time {
	return Time{t}
}

func (t *Time) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	err := json.Unmarshal(data, &s)
	if err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		parsed, perr := time.Parse(layout, s)
		if perr == nil {
			t.Time = parsed
			return nil
		}
		err = perr
	}
	return err
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
