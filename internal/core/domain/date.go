package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Date is a timestamp that decodes both calendar dates ("2024-03-15") and
// RFC 3339 timestamps, and always encodes as RFC 3339.
type Date struct {
	time.Time
}

// NewDate wraps t in UTC.
func NewDate(t time.Time) Date {
	return Date{Time: t.UTC()}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// MarshalJSON encodes the date as an RFC 3339 string, or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts any of dateLayouts, null or an empty string.
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("date: unsupported format %q", s)
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatLongDate renders t as "1 de diciembre de 2024".
func FormatLongDate(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}
