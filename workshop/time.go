package workshop

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DATE - Calendar day (every ledger record is dated to the day)
// =============================================================================

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC. The zero Date means "not set".
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate accepts "2006-01-02" or an RFC3339 timestamp; the time of day is dropped.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return NewDate(t.Year(), t.Month(), t.Day()), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool  { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool  { return d.Time.Equal(other.Time) }
func (d Date) IsZero() bool           { return d.Time.IsZero() }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// StartOfDay is 00:00:00.000 of the day.
func (d Date) StartOfDay() time.Time { return d.Time }

// EndOfDay is 23:59:59.999 of the day.
func (d Date) EndOfDay() time.Time {
	return d.Time.Add(24*time.Hour - time.Millisecond)
}

// MonthKey returns "YYYY-MM".
func (d Date) MonthKey() string { return d.Time.Format("2006-01") }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// DATE RANGE - Report filter window
// =============================================================================

// DateRange is an inclusive window of calendar days. A nil bound is open.
type DateRange struct {
	Start *Date
	End   *Date
}

// NewDateRange builds a range from two optional "YYYY-MM-DD" strings.
// An empty string leaves that side unbounded.
func NewDateRange(start, end string) (DateRange, error) {
	var r DateRange
	if start != "" {
		d, err := ParseDate(start)
		if err != nil {
			return DateRange{}, &ValidationError{Field: "start", Rule: "date", Message: err.Error()}
		}
		r.Start = &d
	}
	if end != "" {
		d, err := ParseDate(end)
		if err != nil {
			return DateRange{}, &ValidationError{Field: "end", Rule: "date", Message: err.Error()}
		}
		r.End = &d
	}
	return r, nil
}

// Between returns the closed range [start, end].
func Between(start, end Date) DateRange {
	return DateRange{Start: &start, End: &end}
}

// Contains compares against Start at 00:00:00.000 and End at 23:59:59.999.
func (r DateRange) Contains(d Date) bool {
	if r.Start != nil && d.Time.Before(r.Start.StartOfDay()) {
		return false
	}
	if r.End != nil && d.Time.After(r.End.EndOfDay()) {
		return false
	}
	return true
}

// Within reports whether [start, end] lies entirely inside the range.
func (r DateRange) Within(start, end Date) bool {
	return r.Contains(start) && r.Contains(end)
}

func (r DateRange) String() string {
	var start, end string
	if r.Start != nil {
		start = r.Start.String()
	}
	if r.End != nil {
		end = r.End.String()
	}
	return "[" + start + ", " + end + "]"
}
