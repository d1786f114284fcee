// Package jsontime decodes timestamps sent either as RFC 3339 strings or as
// Unix epoch milliseconds.
package jsontime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ErrInvalid is wrapped by every decoding failure of a timestamp value.
var ErrInvalid = errors.New("invalid timestamp")

// Time wraps time.Time with lenient JSON decoding. Encoding is RFC 3339 with
// milliseconds in UTC.
type Time struct {
	time.Time
}

// Layout is the encoding format.
const Layout = "2006-01-02T15:04:05.000Z07:00"

// UnmarshalJSON accepts an RFC 3339 string, a numeric string or a number of
// epoch milliseconds. null leaves the value zero.
func (t *Time) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			t.Time = time.Time{}
			return nil
		}
		if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
			t.Time = ts.UTC()
			return nil
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("%w %q", ErrInvalid, s)
		}
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("%w %s", ErrInvalid, b)
	}
	// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("%w %s: out of range", ErrInvalid, b)
	}
	t.Time = time.UnixMilli(int64(f)).UTC()
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.UTC().Format(Layout) + `"`), nil
}

// New wraps ts.
func New(ts time.Time) Time { return Time{Time: ts} }
