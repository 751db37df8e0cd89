package generic

import (
	"time"
)

// =============================================================================
// TIME POINT - Day-granular date (leave is always requested in whole days)
// =============================================================================

const DateLayout = "2006-01-02"

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.normalize().AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool {
	wd := tp.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
func (tp TimePoint) IsZero() bool { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format(DateLayout)
}

// =============================================================================
// HOLIDAY CALENDAR - Company-specific holidays
// =============================================================================

// Holiday represents a company holiday that should not count against leave.
type Holiday struct {
	ID        string
	Date      TimePoint // The holiday date
	Name      string    // e.g., "Christmas Day", "Independence Day"
	Recurring bool      // true = same month/day every year
}

// HolidayCalendar provides holiday lookup functionality.
type HolidayCalendar interface {
	IsHoliday(date TimePoint) bool
}

// StaticCalendar is a HolidayCalendar over a fixed snapshot of holidays.
// It is safe for concurrent use because it is never mutated after construction.
type StaticCalendar struct {
	exact     map[string]string
	recurring map[string]string
}

func NewStaticCalendar(holidays []Holiday) *StaticCalendar {
	c := &StaticCalendar{
		exact:     make(map[string]string, len(holidays)),
		recurring: make(map[string]string),
	}
	for _, h := range holidays {
		if h.Recurring {
			c.recurring[h.Date.Time.Format("01-02")] = h.Name
			continue
		}
		c.exact[h.Date.String()] = h.Name
	}
	return c
}

func (c *StaticCalendar) IsHoliday(date TimePoint) bool {
	_, ok := c.HolidayName(date)
	return ok
}

// HolidayName returns the name of the holiday falling on date, if any.
func (c *StaticCalendar) HolidayName(date TimePoint) (string, bool) {
	if c == nil {
		return "", false
	}
	if name, ok := c.exact[date.String()]; ok {
		return name, true
	}
	name, ok := c.recurring[date.Time.Format("01-02")]
	return name, ok
}

// IsWorkdayWithHolidays checks if a date is a working day, considering holidays.
func (tp TimePoint) IsWorkdayWithHolidays(calendar HolidayCalendar) bool {
	if tp.IsWeekend() {
		return false
	}
	if calendar != nil && calendar.IsHoliday(tp) {
		return false
	}
	return true
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the signed number of whole days from -> to.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
