package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 layout used to print dates
const DateFormat = "2006-01-02"

// readDateFormat is lenient on single digit months and days (2024-7-1)
const readDateFormat = "2006-1-2"

// Date represents a calendar day with no time zone attached
// Valuations and transactions are recorded per day, never per instant
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns a normalized Date (NewDate(2024, 2, 30) is 2024-03-01)
func NewDate(year int, month time.Month, day int) Date {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Date{t.Year(), t.Month(), t.Day()}
}

// DateOf returns the calendar day of t in t's own location
func DateOf(t time.Time) Date {
	return NewDate(t.Date())
}

// Today returns the current local calendar day
func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses a date in the 2006-01-02 layout (single digits accepted)
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(readDateFormat, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want format %q: %w", s, DateFormat, err)
	}
	return DateOf(t), nil
}

// MustParseDate is like ParseDate but panics on error
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Time returns midnight UTC of the day
func (d Date) Time() time.Time { return d.time() }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }
func (d Date) After(x Date) bool  { return d.time().After(x.time()) }
func (d Date) Equal(x Date) bool  { return d == x }

// Compare returns -1, 0 or +1 like cmp.Compare
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// AddDays returns the date n days later (n may be negative)
func (d Date) AddDays(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// AddMonths adds calendar months, normalizing overflowing days like time.AddDate
func (d Date) AddMonths(n int) Date { return NewDate(d.y, d.m+time.Month(n), d.d) }

// AddYears adds calendar years, normalizing 29 February like time.AddDate
func (d Date) AddYears(n int) Date { return NewDate(d.y+n, d.m, d.d) }

// DaysSince returns the number of days from x to d (negative if d is before x)
func (d Date) DaysSince(x Date) int {
	return int(d.time().Sub(x.time()).Hours() / 24)
}

// YearMonth identifies the calendar month of the date, e.g. "2024-07"
func (d Date) YearMonth() string { return d.time().Format("2006-01") }

// String formats the date as 2006-01-02
func (d Date) String() string { return d.time().Format(DateFormat) }

// MarshalJSON encodes the date as a "2006-01-02" string
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "2006-01-02" string
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is an inclusive range of days. A zero bound is unbounded on that side.
type DateRange struct {
	From Date
	To   Date
}

// Contains reports whether d falls within the range
func (r DateRange) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To) {
		return false
	}
	return true
}

// Validate ensures From is not after To when both are set
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("invalid date range: %s is after %s", r.From, r.To)
	}
	return nil
}

func (r DateRange) String() string {
	from, to := "..", ".."
	if !r.From.IsZero() {
		from = r.From.String()
	}
	if !r.To.IsZero() {
		to = r.To.String()
	}
	return from + "/" + to
}
