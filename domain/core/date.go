package core

import (
	"time"
)

// Date represents a calendar day without time-of-day or timezone.
// All per-night records are keyed by Date; chronological order matters.
type Date time.Time

// NewDate creates a date from year, month, day
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf truncates a timestamp to its calendar day
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a date in ISO "2006-01-02" form
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date(t), nil
}

// Time returns the underlying time.Time (midnight UTC)
func (d Date) Time() time.Time {
	return time.Time(d)
}

// AddDays returns the date n calendar days later (negative n goes back)
func (d Date) AddDays(n int) Date {
	return Date(time.Time(d).AddDate(0, 0, n))
}

// Before returns true if d is before u
func (d Date) Before(u Date) bool {
	return time.Time(d).Before(time.Time(u))
}

// After returns true if d is after u
func (d Date) After(u Date) bool {
	return time.Time(d).After(time.Time(u))
}

// Equal returns true if d and u are the same calendar day
func (d Date) Equal(u Date) bool {
	return time.Time(d).Equal(time.Time(u))
}

// IsZero checks if the date is zero
func (d Date) IsZero() bool {
	return time.Time(d).IsZero()
}

// DaysUntil returns the number of whole days from d to u (negative if u is earlier)
func (d Date) DaysUntil(u Date) int {
	return int(time.Time(u).Sub(time.Time(d)).Hours() / 24)
}

// String returns the ISO date form
func (d Date) String() string {
	return time.Time(d).Format("2006-01-02")
}

// JSON marshaling for Date
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
