package leave_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

func ruleInput(lt leave.LeaveType, start, end generic.TimePoint) leave.RuleInput {
	cfg := leave.DefaultConfig()
	emp := testEmployee()
	intent := leave.Intent{LeaveType: lt, Period: generic.Period{Start: start, End: end}}
	return leave.RuleInput{
		Intent:        intent,
		Employee:      *emp,
		Team:          *ampleTeam(),
		Config:        cfg,
		Today:         testToday,
		RequestedDays: leave.RequestedDays(intent, nil),
		Balance:       leave.ResolveBalance(cfg, *emp, lt),
	}
}

// =============================================================================
// BLACKOUT
// =============================================================================

func TestBlackoutRule_IntersectionNamesWindow(t *testing.T) {
	// GIVEN: A year-end freeze overlapping the last requested day
	in := ruleInput(leave.LeaveAnnual, date(2025, time.December, 15), date(2025, time.December, 20))
	in.Team.Blackouts = []leave.BlackoutWindow{
		{Period: generic.Period{Start: date(2025, time.July, 1), End: date(2025, time.July, 5)}, Label: "Mid-year audit"},
		{Period: generic.Period{Start: date(2025, time.December, 20), End: date(2026, time.January, 2)}, Label: "Year-end freeze"},
	}

	// WHEN
	res, err := leave.BlackoutRule{}.Evaluate(in)

	// THEN
	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "Year-end freeze")
	assert.NotContains(t, res.Message, "Mid-year audit")
}

func TestBlackoutRule_NoIntersection(t *testing.T) {
	in := ruleInput(leave.LeaveAnnual, date(2025, time.December, 15), date(2025, time.December, 19))
	in.Team.Blackouts = []leave.BlackoutWindow{
		{Period: generic.Period{Start: date(2025, time.December, 20), End: date(2026, time.January, 2)}, Label: "Year-end freeze"},
	}

	res, err := leave.BlackoutRule{}.Evaluate(in)

	require.NoError(t, err)
	assert.True(t, res.Passed)
}

// =============================================================================
// NOTICE, COVERAGE, CONCURRENCY
// =============================================================================

func TestNoticePeriodRule(t *testing.T) {
	tests := []struct {
		name   string
		lt     leave.LeaveType
		start  generic.TimePoint
		passed bool
	}{
		{"sick today needs none", leave.LeaveSick, testToday, true},
		{"annual today fails", leave.LeaveAnnual, testToday, false},
		{"annual in 7 days passes", leave.LeaveAnnual, testToday.AddDays(7), true},
		{"annual in 6 days fails", leave.LeaveAnnual, testToday.AddDays(6), false},
		{"maternity needs 30", leave.LeaveMaternity, testToday.AddDays(20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := leave.NoticePeriodRule{}.Evaluate(ruleInput(tt.lt, tt.start, tt.start))
			require.NoError(t, err)
			assert.Equal(t, tt.passed, res.Passed, res.Message)
		})
	}
}

func TestTeamCoverageRule_BelowMinimum(t *testing.T) {
	// GIVEN: 4 people, 1 away, 3 must stay -> 2 would be present
	in := ruleInput(leave.LeaveAnnual, testToday.AddDays(10), testToday.AddDays(10))
	in.Team = leave.TeamState{TeamSize: 4, OnLeaveCount: 1, OnLeave: []string{"Bob"}, MinRequiredCoverage: 3}

	res, err := leave.TeamCoverageRule{}.Evaluate(in)

	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Equal(t, 2, res.Details["would_be_present"])
}

func TestMaxConcurrentRule_DefaultLimit(t *testing.T) {
	// GIVEN: No team-specific cap, default is 2, one colleague already away
	in := ruleInput(leave.LeaveAnnual, testToday.AddDays(10), testToday.AddDays(10))
	in.Team = leave.TeamState{TeamSize: 10, OnLeave: []string{"Bob"}}

	res, err := leave.MaxConcurrentRule{}.Evaluate(in)
	require.NoError(t, err)
	assert.True(t, res.Passed)

	// WHEN: A second colleague is away too
	in.Team.OnLeave = append(in.Team.OnLeave, "Carol")
	res, err = leave.MaxConcurrentRule{}.Evaluate(in)

	// THEN: 3 > 2
	require.NoError(t, err)
	assert.False(t, res.Passed)
}

// =============================================================================
// BALANCE AND DURATION
// =============================================================================

func TestBalanceRule_StatutoryAllowanceWhenMissing(t *testing.T) {
	// GIVEN: No bereavement balance on record, allowance is 5
	in := ruleInput(leave.LeaveBereavement, date(2025, time.March, 10), date(2025, time.March, 12))

	res, err := leave.BalanceRule{}.Evaluate(in)

	require.NoError(t, err)
	assert.True(t, res.Passed)
	assert.Equal(t, 2.0, res.Details["after"])
}

func TestBalanceRule_Insufficient(t *testing.T) {
	in := ruleInput(leave.LeavePersonal, date(2025, time.March, 10), date(2025, time.March, 12))

	res, err := leave.BalanceRule{}.Evaluate(in)

	require.NoError(t, err)
	assert.False(t, res.Passed)
	assert.Contains(t, res.Message, "Insufficient personal leave balance")
}

func TestDurationRules_AreIndependent(t *testing.T) {
	// GIVEN: 12 business days of annual leave (Mon 10 .. Tue 25 March)
	in := ruleInput(leave.LeaveAnnual, date(2025, time.March, 10), date(2025, time.March, 25))
	require.Equal(t, 12, in.RequestedDays)

	maxRes, err := leave.MaxDurationRule{}.Evaluate(in)
	require.NoError(t, err)
	runRes, err := leave.ConsecutiveLimitRule{}.Evaluate(in)
	require.NoError(t, err)

	// THEN: under the 20 day maximum, over the 10 day run limit
	assert.True(t, maxRes.Passed)
	assert.False(t, runRes.Passed)
}

// =============================================================================
// FAULT ISOLATION
// =============================================================================

type panickingRule struct{}

func (panickingRule) ID() leave.RuleID { return "panicky" }
func (panickingRule) Evaluate(leave.RuleInput) (leave.ConstraintResult, error) {
	panic("nil map somewhere")
}

type failingRule struct{}

func (failingRule) ID() leave.RuleID { return "failing" }
func (failingRule) Evaluate(leave.RuleInput) (leave.ConstraintResult, error) {
	return leave.ConstraintResult{}, errors.New("unparseable date")
}

func TestEvaluateRules_FaultsAreSkippedNotFatal(t *testing.T) {
	rules := []leave.Rule{panickingRule{}, leave.BalanceRule{}, failingRule{}, leave.MaxDurationRule{}}
	in := ruleInput(leave.LeaveAnnual, testToday.AddDays(10), testToday.AddDays(10))

	results, faults := leave.EvaluateRules(rules, in, zap.NewNop())

	require.Len(t, results, 4)
	require.Len(t, faults, 2)
	assert.True(t, results[0].Skipped)
	assert.True(t, results[0].Passed)
	assert.Contains(t, results[0].Fault, "nil map somewhere")
	assert.Equal(t, leave.RuleBalance, results[1].RuleID)
	assert.False(t, results[1].Skipped)
	assert.True(t, results[2].Skipped)
	assert.Equal(t, leave.RuleMaxDuration, results[3].RuleID)
}

func TestBlackoutRule_MalformedWindowBecomesFault(t *testing.T) {
	in := ruleInput(leave.LeaveAnnual, testToday.AddDays(10), testToday.AddDays(10))
	in.Team.Blackouts = []leave.BlackoutWindow{
		{Period: generic.Period{Start: date(2025, time.May, 10), End: date(2025, time.May, 1)}, Label: "broken"},
	}

	results, faults := leave.EvaluateRules([]leave.Rule{leave.BlackoutRule{}}, in, zap.NewNop())

	require.Len(t, faults, 1)
	assert.Equal(t, leave.RuleBlackout, faults[0].RuleID)
	assert.True(t, errors.Is(faults[0], generic.ErrInvalidPeriod))
	assert.True(t, results[0].Skipped)
}

func TestStandardRules_DisabledRulesOmitted(t *testing.T) {
	cfg := leave.DefaultConfig()
	cfg.DisabledRules[leave.RuleBlackout] = true

	rules := leave.StandardRules(cfg)

	require.Len(t, rules, 6)
	for _, r := range rules {
		assert.NotEqual(t, leave.RuleBlackout, r.ID())
	}
}
