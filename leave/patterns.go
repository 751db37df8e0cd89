package leave

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// PATTERN DETECTOR - Advisory signals from recent history
// =============================================================================

// RecentHistory keeps records starting within windowDays before today, newest
// first, at most limit of them (0 = no limit). The input is not modified.
func RecentHistory(history []HistoryRecord, today generic.TimePoint, windowDays, limit int) []HistoryRecord {
	cutoff := today.AddDays(-windowDays)
	out := make([]HistoryRecord, 0, len(history))
	for _, h := range history {
		if h.Start.IsZero() || h.Start.Before(cutoff) {
			continue
		}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// DetectPatterns inspects already-windowed history. Findings never fail a
// request; they only lower the score.
func DetectPatterns(intent Intent, history []HistoryRecord) []PatternFinding {
	var findings []PatternFinding

	adjacent := 0
	for _, h := range history {
		if wd := h.Start.Weekday(); wd == time.Monday || wd == time.Friday {
			adjacent++
		}
	}
	if adjacent >= 3 {
		findings = append(findings, PatternFinding{
			Kind:        PatternWeekdayAdjacent,
			Confidence:  math.Min(float64(adjacent)/5, 1),
			Description: fmt.Sprintf("%d recent leaves started on a Monday or Friday", adjacent),
		})
	}

	urgent := 0
	for _, h := range history {
		if urgencyWords.MatchString(h.Reason) {
			urgent++
		}
	}
	if urgent >= 2 {
		findings = append(findings, PatternFinding{
			Kind:        PatternFrequentUrgent,
			Confidence:  math.Min(float64(urgent)/3, 1),
			Description: fmt.Sprintf("%d recent requests were marked urgent or emergency", urgent),
		})
	}

	start := intent.Start()
	for _, h := range history {
		if h.Start.Month() != start.Month() {
			continue
		}
		diff := h.Start.Day() - start.Day()
		if diff < 0 {
			diff = -diff
		}
		if diff <= 3 {
			findings = append(findings, PatternFinding{
				Kind:        PatternRecurringPeriod,
				Confidence:  0.7,
				Description: fmt.Sprintf("Similar leave taken around the same date (%s)", h.Start),
			})
			break
		}
	}

	return findings
}
