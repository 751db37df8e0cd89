package leave

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// DATE MATCHERS - Typed recognisers tried in a fixed order
// =============================================================================

// DateMatcher finds date mentions in free text. Matchers are independent; the
// extractor runs all of them and merges the results.
type DateMatcher interface {
	Name() string
	Match(text string, today generic.TimePoint) []generic.TimePoint
}

// DefaultDateMatchers returns the matchers in priority order.
func DefaultDateMatchers() []DateMatcher {
	return []DateMatcher{
		RelativeMatcher{},
		MonthNameMatcher{},
		NumericMatcher{},
	}
}

// -----------------------------------------------------------------------------
// Relative: today, tomorrow, next week, next <weekday>
// -----------------------------------------------------------------------------

type RelativeMatcher struct{}

var (
	reToday       = regexp.MustCompile(`(?i)\btoday\b`)
	reTomorrow    = regexp.MustCompile(`(?i)\btomorrow\b`)
	reNextWeek    = regexp.MustCompile(`(?i)\bnext\s+week\b`)
	reNextWeekday = regexp.MustCompile(`(?i)\bnext\s+(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

var weekdayByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (RelativeMatcher) Name() string { return "relative" }

func (RelativeMatcher) Match(text string, today generic.TimePoint) []generic.TimePoint {
	var out []generic.TimePoint
	if reToday.MatchString(text) {
		out = append(out, today)
	}
	if reTomorrow.MatchString(text) {
		out = append(out, today.AddDays(1))
	}
	if reNextWeek.MatchString(text) {
		out = append(out, NextWeekday(today, time.Monday))
	}
	for _, m := range reNextWeekday.FindAllStringSubmatch(text, -1) {
		out = append(out, NextWeekday(today, weekdayByName[strings.ToLower(m[1])]))
	}
	return out
}

// NextWeekday returns the first day strictly after today falling on target.
// When today already is target, that is one week later.
func NextWeekday(today generic.TimePoint, target time.Weekday) generic.TimePoint {
	ahead := (int(target) - int(today.Weekday()) + 7) % 7
	if ahead == 0 {
		ahead = 7
	}
	return today.AddDays(ahead)
}

// -----------------------------------------------------------------------------
// Month name: "January 15th", "Jan 15, 2026", "15th of January", "15 Jan"
// -----------------------------------------------------------------------------

type MonthNameMatcher struct{}

const monthAlternation = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var (
	reMonthDay = regexp.MustCompile(`(?i)\b` + monthAlternation + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	reDayMonth = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?` + monthAlternation + `\b(?:,?\s+(\d{4})\b)?`)
)

func (MonthNameMatcher) Name() string { return "month_name" }

func (MonthNameMatcher) Match(text string, today generic.TimePoint) []generic.TimePoint {
	var out []generic.TimePoint
	for _, m := range reMonthDay.FindAllStringSubmatch(text, -1) {
		if tp, ok := resolveMonthDay(m[1], m[2], m[3], today); ok {
			out = append(out, tp)
		}
	}
	for _, m := range reDayMonth.FindAllStringSubmatch(text, -1) {
		if tp, ok := resolveMonthDay(m[2], m[1], m[3], today); ok {
			out = append(out, tp)
		}
	}
	return out
}

// resolveMonthDay picks the current year when the month has not passed yet,
// otherwise next year. An explicit year wins.
func resolveMonthDay(monthName, dayStr, yearStr string, today generic.TimePoint) (generic.TimePoint, bool) {
	month, ok := monthByPrefix(monthName)
	if !ok {
		return generic.TimePoint{}, false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return generic.TimePoint{}, false
	}
	year := today.Year()
	if month < today.Month() {
		year++
	}
	if yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
	}
	return validDate(year, month, day)
}

func monthByPrefix(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), name[:3]) {
			return m, true
		}
	}
	return 0, false
}

// validDate rejects days that would roll over into the next month.
func validDate(year int, month time.Month, day int) (generic.TimePoint, bool) {
	if day < 1 || day > 31 || month < time.January || month > time.December {
		return generic.TimePoint{}, false
	}
	tp := generic.NewTimePoint(year, month, day)
	if tp.Month() != month || tp.Day() != day {
		return generic.TimePoint{}, false
	}
	return tp, true
}

// -----------------------------------------------------------------------------
// Numeric: 2025-03-10, 10/03/2025, 10-03-2025 (day first)
// -----------------------------------------------------------------------------

type NumericMatcher struct{}

var (
	reISODate   = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	reSlashDMY  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	reHyphenDMY = regexp.MustCompile(`\b(\d{1,2})-(\d{1,2})-(\d{4})\b`)
)

func (NumericMatcher) Name() string { return "numeric" }

func (NumericMatcher) Match(text string, _ generic.TimePoint) []generic.TimePoint {
	var out []generic.TimePoint
	add := func(y, m, d string) {
		year, _ := strconv.Atoi(y)
		month, _ := strconv.Atoi(m)
		day, _ := strconv.Atoi(d)
		if tp, ok := validDate(year, time.Month(month), day); ok {
			out = append(out, tp)
		}
	}
	for _, m := range reISODate.FindAllStringSubmatch(text, -1) {
		add(m[1], m[2], m[3])
	}
	for _, m := range reSlashDMY.FindAllStringSubmatch(text, -1) {
		add(m[3], m[2], m[1])
	}
	for _, m := range reHyphenDMY.FindAllStringSubmatch(text, -1) {
		add(m[3], m[2], m[1])
	}
	return out
}

// =============================================================================
// MERGING
// =============================================================================

// FindDates runs every matcher and returns the distinct dates in ascending order.
func FindDates(text string, today generic.TimePoint, matchers []DateMatcher) []generic.TimePoint {
	seen := make(map[string]bool)
	var out []generic.TimePoint
	for _, m := range matchers {
		for _, tp := range m.Match(text, today) {
			key := tp.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, tp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

var reDuration = regexp.MustCompile(`(?i)\b(\d{1,3})\s+(?:(?:working|business)\s+)?days?\b`)

// ParseDuration returns N for the first "N days" / "N working days" phrase.
func ParseDuration(text string) (int, bool) {
	m := reDuration.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
