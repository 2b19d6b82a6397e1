package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// DefaultOptionsBlob is used when no options were ever saved.
const DefaultOptionsBlob = `{"reltime":false,"toffset":0}`

// ExportOptions controls how point timestamps are rendered on export.
type ExportOptions struct {
	UseRelativeTime   bool  `json:"reltime"`
	TimeOffsetSeconds int64 `json:"toffset"`
}

// UnmarshalJSON also accepts toffset as a numeric string, which is how older
// clients stored the raw value of the offset input. Fractional offsets are
// rejected.
func (o *ExportOptions) UnmarshalJSON(data []byte) error {
	var raw struct {
		RelTime bool            `json:"reltime"`
		TOffset json.RawMessage `json:"toffset"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	offset, err := parseOffset(raw.TOffset)
	if err != nil {
		return err
	}
	o.UseRelativeTime = raw.RelTime
	o.TimeOffsetSeconds = offset
	return nil
}

func parseOffset(raw json.RawMessage) (int64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return 0, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid toffset %q", text)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("toffset %q is not a whole number of seconds", text)
	}
	return int64(f), nil
}
