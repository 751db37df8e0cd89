package leave

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// RULE CONTRACT
// =============================================================================

// RuleInput is the read-only context every rule sees.
type RuleInput struct {
	Intent        Intent
	Employee      Employee
	Team          TeamState
	Config        *Config
	Today         generic.TimePoint
	RequestedDays int
	Balance       generic.Amount
}

// Rule is one independent constraint check. An error means the rule could
// not be evaluated; the evaluator records it and skips the rule.
type Rule interface {
	ID() RuleID
	Evaluate(in RuleInput) (ConstraintResult, error)
}

// StandardRules returns the enabled rules in their fixed evaluation order.
func StandardRules(cfg *Config) []Rule {
	all := []Rule{
		BlackoutRule{},
		NoticePeriodRule{},
		TeamCoverageRule{},
		MaxConcurrentRule{},
		BalanceRule{},
		MaxDurationRule{},
		ConsecutiveLimitRule{},
	}
	out := make([]Rule, 0, len(all))
	for _, r := range all {
		if cfg.RuleEnabled(r.ID()) {
			out = append(out, r)
		}
	}
	return out
}

// EvaluateRules runs every rule. No rule can stop the others: errors and
// panics become skipped results carrying the fault.
func EvaluateRules(rules []Rule, in RuleInput, logger *zap.Logger) ([]ConstraintResult, []*RuleFault) {
	results := make([]ConstraintResult, 0, len(rules))
	var faults []*RuleFault
	for _, r := range rules {
		res, fault := runRule(r, in)
		if fault != nil {
			logger.Warn("rule skipped", zap.String("rule", string(r.ID())), zap.Error(fault.Err))
			faults = append(faults, fault)
			res = ConstraintResult{
				RuleID:  r.ID(),
				Passed:  true,
				Skipped: true,
				Message: fmt.Sprintf("%s check skipped", r.ID()),
				Fault:   fault.Err.Error(),
			}
		}
		results = append(results, res)
	}
	return results, faults
}

func runRule(r Rule, in RuleInput) (res ConstraintResult, fault *RuleFault) {
	defer func() {
		if p := recover(); p != nil {
			fault = &RuleFault{RuleID: r.ID(), Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	res, err := r.Evaluate(in)
	if err != nil {
		return ConstraintResult{}, &RuleFault{RuleID: r.ID(), Err: err}
	}
	res.RuleID = r.ID()
	return res, nil
}

// ResolveBalance returns the remaining balance for the intent's leave type.
// Types absent from the snapshot fall back to the statutory allowance, else 0.
func ResolveBalance(cfg *Config, emp Employee, lt LeaveType) generic.Amount {
	if b, ok := emp.Balances[lt]; ok {
		return b
	}
	if days, ok := cfg.StatutoryAllowances[lt]; ok {
		return generic.NewAmountFromInt(days, generic.UnitDays)
	}
	return generic.NewAmountFromInt(0, generic.UnitDays)
}

// Conflicts is the number of team members already off during the request.
func (t TeamState) Conflicts() int {
	if len(t.OnLeave) > t.OnLeaveCount {
		return len(t.OnLeave)
	}
	return t.OnLeaveCount
}

// =============================================================================
// RULES
// =============================================================================

// BlackoutRule fails when the request intersects any blackout window.
type BlackoutRule struct{}

func (BlackoutRule) ID() RuleID { return RuleBlackout }

func (BlackoutRule) Evaluate(in RuleInput) (ConstraintResult, error) {
	var hits []string
	for _, w := range in.Team.Blackouts {
		if err := w.Period.Validate(); err != nil {
			return ConstraintResult{}, fmt.Errorf("blackout window %q: %w", w.Label, err)
		}
		if in.Intent.Period.Overlaps(w.Period) {
			hits = append(hits, fmt.Sprintf("%s %s", w.Label, w.Period))
		}
	}
	if len(hits) > 0 {
		return ConstraintResult{
			Passed:  false,
			Message: "Requested dates fall within blackout window: " + strings.Join(hits, "; "),
			Details: map[string]any{"windows": hits},
		}, nil
	}
	return ConstraintResult{Passed: true, Message: "No blackout window conflicts"}, nil
}

// NoticePeriodRule compares days of advance notice with the per-type minimum.
type NoticePeriodRule struct{}

func (NoticePeriodRule) ID() RuleID { return RuleNoticePeriod }

func (NoticePeriodRule) Evaluate(in RuleInput) (ConstraintResult, error) {
	if in.Today.IsZero() || in.Intent.Start().IsZero() {
		return ConstraintResult{}, errors.New("missing start date or reference date")
	}
	required := in.Config.NoticeDays[in.Intent.LeaveType]
	actual := generic.DaysBetween(in.Today, in.Intent.Start())
	details := map[string]any{"required_days": required, "actual_days": actual}
	if actual < required {
		return ConstraintResult{
			Passed:  false,
			Message: fmt.Sprintf("%s requires %d days notice, %d given", capitalize(in.Intent.LeaveType.Label()), required, actual),
			Details: details,
		}, nil
	}
	return ConstraintResult{
		Passed:  true,
		Message: fmt.Sprintf("Notice period met (%d days given, %d required)", actual, required),
		Details: details,
	}, nil
}

// TeamCoverageRule checks that enough colleagues remain present.
type TeamCoverageRule struct{}

func (TeamCoverageRule) ID() RuleID { return RuleTeamCoverage }

func (TeamCoverageRule) Evaluate(in RuleInput) (ConstraintResult, error) {
	if in.Team.TeamSize == 0 {
		return ConstraintResult{Passed: true, Message: "No team roster, coverage not checked"}, nil
	}
	present := in.Team.TeamSize - (in.Team.Conflicts() + 1)
	details := map[string]any{
		"team_size":        in.Team.TeamSize,
		"on_leave":         in.Team.Conflicts(),
		"would_be_present": present,
		"min_required":     in.Team.MinRequiredCoverage,
		"members_on_leave": in.Team.OnLeave,
	}
	if present < in.Team.MinRequiredCoverage {
		return ConstraintResult{
			Passed:  false,
			Message: fmt.Sprintf("Only %d of %d team members would be present, %d required", present, in.Team.TeamSize, in.Team.MinRequiredCoverage),
			Details: details,
		}, nil
	}
	return ConstraintResult{
		Passed:  true,
		Message: fmt.Sprintf("Team coverage sufficient (%d present)", present),
		Details: details,
	}, nil
}

// MaxConcurrentRule caps how many members may be off at once.
type MaxConcurrentRule struct{}

func (MaxConcurrentRule) ID() RuleID { return RuleMaxConcurrent }

func (MaxConcurrentRule) Evaluate(in RuleInput) (ConstraintResult, error) {
	limit := in.Team.MaxConcurrentLeave
	if limit == 0 {
		limit = in.Config.DefaultMaxConcurrent
	}
	if limit == 0 {
		return ConstraintResult{Passed: true, Message: "No concurrent leave limit"}, nil
	}
	total := in.Team.Conflicts() + 1
	details := map[string]any{"concurrent": total, "limit": limit}
	if total > limit {
		return ConstraintResult{
			Passed:  false,
			Message: fmt.Sprintf("%d people would be on leave at once, limit is %d", total, limit),
			Details: details,
		}, nil
	}
	return ConstraintResult{
		Passed:  true,
		Message: fmt.Sprintf("Concurrent leave within limit (%d of %d)", total, limit),
		Details: details,
	}, nil
}

// BalanceRule fails when the remaining balance cannot cover the request.
type BalanceRule struct{}

func (BalanceRule) ID() RuleID { return RuleBalance }

func (BalanceRule) Evaluate(in RuleInput) (ConstraintResult, error) {
	if in.Balance.IsNegative() {
		return ConstraintResult{}, generic.ErrNegativeAmount
	}
	requested := generic.NewAmountFromInt(in.RequestedDays, generic.UnitDays)
	after := in.Balance.Sub(requested)
	details := map[string]any{
		"balance":   in.Balance.Float(),
		"requested": in.RequestedDays,
		"after":     after.Float(),
	}
	if in.Balance.LessThan(requested) {
		return ConstraintResult{
			Passed:  false,
			Message: fmt.Sprintf("Insufficient %s balance: %s days available, %d requested", in.Intent.LeaveType.Label(), in.Balance.Value, in.RequestedDays),
			Details: details,
		}, nil
	}
	return ConstraintResult{
		Passed:  true,
		Message: fmt.Sprintf("Sufficient balance (%s days remaining after request)", after.Value),
		Details: details,
	}, nil
}

// MaxDurationRule applies the overall per-type cap on business days.
type MaxDurationRule struct{}

func (MaxDurationRule) ID() RuleID { return RuleMaxDuration }

func (MaxDurationRule) Evaluate(in RuleInput) (ConstraintResult, error) {
	limit, ok := in.Config.MaxDuration[in.Intent.LeaveType]
	if !ok {
		return ConstraintResult{Passed: true, Message: "No maximum duration for this leave type"}, nil
	}
	details := map[string]any{"requested": in.RequestedDays, "max": limit}
	if in.RequestedDays > limit {
		return ConstraintResult{
			Passed:  false,
			Message: fmt.Sprintf("%d days exceeds the %d day maximum for %s", in.RequestedDays, limit, in.Intent.LeaveType.Label()),
			Details: details,
		}, nil
	}
	return ConstraintResult{Passed: true, Message: "Duration within maximum", Details: details}, nil
}

// ConsecutiveLimitRule caps the calendar span of a single request.
type ConsecutiveLimitRule struct{}

func (ConsecutiveLimitRule) ID() RuleID { return RuleConsecutiveLimit }

func (ConsecutiveLimitRule) Evaluate(in RuleInput) (ConstraintResult, error) {
	limit, ok := in.Config.ConsecutiveLimit[in.Intent.LeaveType]
	if !ok {
		return ConstraintResult{Passed: true, Message: "No consecutive-day limit for this leave type"}, nil
	}
	span := in.Intent.Period.Length()
	details := map[string]any{"consecutive_days": span, "limit": limit}
	if span > limit {
		return ConstraintResult{
			Passed:  false,
			Message: fmt.Sprintf("%d consecutive days exceeds the limit of %d for %s", span, limit, in.Intent.LeaveType.Label()),
			Details: details,
		}, nil
	}
	return ConstraintResult{Passed: true, Message: "Within consecutive-day limit", Details: details}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
