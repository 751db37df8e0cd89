package leave_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TONE
// =============================================================================

func TestDetectTone(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		tone       leave.Tone
		confidence float64
	}{
		{"stressed", "Family emergency, I need leave asap, it is urgent and critical", leave.ToneStressed, 1},
		{"casual", "I am thinking maybe I might take Friday off", leave.ToneCasual, 1},
		{"formal", "I would like to request two days", leave.ToneFormal, 2.0 / 3},
		{"anxious", "I'm worried and a bit nervous", leave.ToneAnxious, 2.0 / 3},
		{"phrase keyword", "please help, my basement flooded", leave.ToneStressed, 1.0 / 3},
		{"tie goes to earlier tone", "maybe, but I'm worried", leave.ToneCasual, 1.0 / 3},
		{"no hits", "need a day off", leave.ToneNeutral, 0.5},
		{"substring is not a word", "I requested leave", leave.ToneNeutral, 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := leave.DetectTone(tc.text)
			assert.Equal(t, tc.tone, got.Tone)
			assert.InDelta(t, tc.confidence, got.Confidence, 0.001)
		})
	}
}

// =============================================================================
// URGENCY
// =============================================================================

func TestDetectUrgency(t *testing.T) {
	tests := []struct {
		name string
		text string
		lead int
		want leave.Urgency
	}{
		{"keyword wins over distance", "urgent family matter", 30, leave.UrgencyHigh},
		{"now is high", "need it now", 15, leave.UrgencyHigh},
		{"now inside a word", "nowhere to be this week", 15, leave.UrgencyLow},
		{"starts tomorrow", "day off", 1, leave.UrgencyHigh},
		{"soon keyword", "would like it soon", 20, leave.UrgencyMedium},
		{"within a week", "day off", 5, leave.UrgencyMedium},
		{"far ahead", "day off", 20, leave.UrgencyLow},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, leave.DetectUrgency(tc.text, testToday.AddDays(tc.lead), testToday))
		})
	}
}

// =============================================================================
// ASSESSMENT
// =============================================================================

func TestAssess_NothingToReport(t *testing.T) {
	factors := leave.Factors{
		BalanceSufficient:   true,
		TeamCapacityPercent: 90,
		PolicyCompliant:     true,
		RequestedDays:       2,
	}

	a := leave.Assess(nil, factors, days(10), *ampleTeam())

	assert.Empty(t, a.Issues)
	assert.Empty(t, a.Suggestions)
}

func TestAssess_CollectsEveryConcern(t *testing.T) {
	// GIVEN: A long request with a shortfall, thin coverage and a late notice
	factors := leave.Factors{
		BalanceSufficient:   false,
		TeamCapacityPercent: 40,
		ConflictCount:       2,
		RequestedDays:       12,
	}
	team := leave.TeamState{TeamSize: 5, OnLeave: []string{"Bob", "Carol"}}
	results := []leave.ConstraintResult{
		{RuleID: leave.RuleBalance, Passed: false, Message: "Insufficient balance"},
		{RuleID: leave.RuleNoticePeriod, Passed: false, Message: "Requires 14 days notice"},
		{RuleID: leave.RuleBlackout, Passed: true, Message: "No blackout conflict"},
	}

	// WHEN: Assessing
	a := leave.Assess(results, factors, days(3), team)

	// THEN: One issue per concern, the balance rule is not repeated
	require.Len(t, a.Issues, 5)
	assert.Contains(t, a.Issues[0], "12 days")
	assert.Contains(t, a.Issues[1], "40%")
	assert.Contains(t, a.Issues[2], "Bob, Carol")
	assert.Contains(t, a.Issues[3], "Extended leave")
	assert.Equal(t, "Requires 14 days notice", a.Issues[4])
	assert.Len(t, a.Suggestions, 4)
}
