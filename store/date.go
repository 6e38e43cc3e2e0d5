package store

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// date stores a calendar day as YYYY-MM-DD and accepts whatever the driver
// hands back: time.Time (postgres, mysql with parseTime, sqlite DATE
// columns), text or bytes.
type date struct{ t *time.Time }

func (d date) Value() (driver.Value, error) {
	if d.t == nil || d.t.IsZero() {
		return nil, nil
	}
	return d.t.Format(time.DateOnly), nil
}

func (d date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d.t = time.Time{}
	case time.Time:
		*d.t = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("store: cannot scan %T into date", src)
	}
	return nil
}

func (d date) parse(s string) error {
	if len(s) >= len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("store: parse date %q: %w", s, err)
	}
	*d.t = t
	return nil
}
