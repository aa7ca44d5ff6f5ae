package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TimeOfDay maps a PostgreSQL TIME column. Its canonical text form is
// "HH:MM:SS", which sorts chronologically as a plain string.
type TimeOfDay struct{ time.Time }

const timeOfDayLayout = "15:04:05"

// timeOfDayInputs are tried in order. PostgreSQL's end-of-day "24:00:00" is
// rejected: it has no time.Time form, so a class ending at midnight is
// stored as "23:59:59".
var timeOfDayInputs = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM"}

// ParseTimeOfDay accepts "HH:MM", "HH:MM:SS" (with optional fractional
// seconds) and 12-hour "h:mm PM" forms.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if err := t.parse(s); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

// MustTimeOfDay is ParseTimeOfDay for literals known to be valid.
func MustTimeOfDay(s string) TimeOfDay {
	t, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *TimeOfDay) parse(s string) error {
	s = strings.TrimSpace(s)
	// Drop a trailing zone such as "Z" or "+05:30" that TIME WITH TIME ZONE may carry.
	if i := strings.IndexAny(s, "Z+"); i > 0 {
		s = s[:i]
	}
	for _, layout := range timeOfDayInputs {
		if tt, err := time.Parse(layout, s); err == nil {
			t.Time = time.Date(0, 1, 1, tt.Hour(), tt.Minute(), tt.Second(), 0, time.UTC)
			return nil
		}
	}
	return fmt.Errorf("invalid time of day %q", s)
}

func (t TimeOfDay) String() string {
	return t.Format(timeOfDayLayout)
}

// Before reports whether t is strictly earlier than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.String() < u.String()
}

// Scan accepts time.Time, []byte or string ("HH:MM[:SS]").
func (t *TimeOfDay) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		t.Time = time.Date(0, 1, 1, x.Hour(), x.Minute(), x.Second(), 0, time.UTC)
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	case nil:
		t.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("time of day: unsupported Scan type %T", v)
	}
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return t.parse(s)
}

// Date maps a PostgreSQL DATE column and serialises as "YYYY-MM-DD".
type Date struct{ time.Time }

const DateLayout = "2006-01-02"

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		// Accept full timestamps such as "2025-01-10T00:00:00.000Z".
		if tt, err := time.Parse(time.RFC3339, s); err == nil {
			return DateOf(tt), nil
		}
		s = s[:len(DateLayout)]
	}
	tt, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{tt}, nil
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d *Date) Scan(v any) error {
	switch x := v.(type) {
	case time.Time:
		*d = DateOf(x)
		return nil
	case []byte:
		p, err := ParseDate(string(x))
		*d = p
		return err
	case string:
		p, err := ParseDate(x)
		*d = p
		return err
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("date: unsupported Scan type %T", v)
	}
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	p, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = p
	return nil
}
