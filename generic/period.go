package generic

import "fmt"

// =============================================================================
// PERIOD - Inclusive date range [Start, End]
// =============================================================================

// Period is an inclusive range of calendar days.
//
// Examples:
//   - A one-day sick leave: [2025-03-10, 2025-03-10]
//   - A blackout window:    [2025-12-20, 2026-01-02]
type Period struct {
	Start TimePoint
	End   TimePoint
}

// NewPeriod returns [start, end] or ErrInvalidPeriod when end is before start.
func NewPeriod(start, end TimePoint) (Period, error) {
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// SingleDay returns the one-day period [day, day].
func SingleDay(day TimePoint) Period {
	return Period{Start: day, End: day}
}

// Validate returns ErrInvalidPeriod for zero bounds or an end before start.
func (p Period) Validate() error {
	if p.Start.IsZero() || p.End.IsZero() {
		return fmt.Errorf("%w: missing bound", ErrInvalidPeriod)
	}
	if p.End.Before(p.Start) {
		return fmt.Errorf("%w: %s", ErrInvalidPeriod, p)
	}
	return nil
}

// Overlaps returns true if the two inclusive ranges share at least one day.
func (p Period) Overlaps(other Period) bool {
	return !p.End.Before(other.Start) && !other.End.Before(p.Start)
}

// Length returns the number of calendar days in the period.
func (p Period) Length() int {
	return DaysBetween(p.Start, p.End) + 1
}

// BusinessDays counts the working days in the period, skipping weekends and
// any day the calendar marks as a holiday. A nil calendar skips weekends only.
func (p Period) BusinessDays(calendar HolidayCalendar) int {
	count := 0
	for day := p.Start; day.BeforeOrEqual(p.End); day = day.AddDays(1) {
		if day.IsWorkdayWithHolidays(calendar) {
			count++
		}
	}
	return count
}

// ExtendToBusinessDays returns a period starting at start whose end is the
// n-th working day counted from start. n < 1 yields the single day start.
func ExtendToBusinessDays(start TimePoint, n int, calendar HolidayCalendar) Period {
	if n < 1 {
		return SingleDay(start)
	}
	end := start
	counted := 0
	// Bounded walk; a calendar that blocks every day would otherwise never stop.
	for i := 0; i < n*7+366; i++ {
		if end.IsWorkdayWithHolidays(calendar) {
			counted++
			if counted == n {
				return Period{Start: start, End: end}
			}
		}
		end = end.AddDays(1)
	}
	return Period{Start: start, End: end}
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
