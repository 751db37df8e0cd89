package leave

// =============================================================================
// CONFIDENCE SCORER
// =============================================================================

// Factors are the aggregated scoring inputs.
type Factors struct {
	BalanceSufficient   bool
	TeamCapacityPercent float64
	ConflictCount       int
	PolicyCompliant     bool
	Patterns            []PatternFinding
	RequestedDays       int
}

// Weights sum to 100.
const (
	weightBalance    = 25.0
	weightCapacity   = 20.0
	weightConflicts  = 15.0
	weightPolicy     = 20.0
	weightNoPatterns = 10.0
	weightDuration   = 10.0
)

// Score maps factors to a confidence in [0, 100]. Pure and deterministic.
func Score(f Factors) float64 {
	score := 0.0

	if f.BalanceSufficient {
		score += weightBalance
	}

	switch {
	case f.TeamCapacityPercent >= 70:
		score += weightCapacity
	case f.TeamCapacityPercent >= 50:
		score += weightCapacity / 2
	}

	switch {
	case f.ConflictCount == 0:
		score += weightConflicts
	case f.ConflictCount <= 2:
		score += weightConflicts / 2
	}

	if f.PolicyCompliant {
		score += weightPolicy
	}

	if len(f.Patterns) == 0 {
		score += weightNoPatterns
	}

	switch {
	case f.RequestedDays <= 5:
		score += weightDuration
	case f.RequestedDays <= 10:
		score += weightDuration / 2
	}

	return clamp(score, 0, 100)
}

// TeamCapacityPercent is the share of the team present if the request is
// granted. An unknown team (size 0) counts as full capacity.
func TeamCapacityPercent(teamSize, conflicts int) float64 {
	if teamSize <= 0 {
		return 100
	}
	return clamp(100*float64(teamSize-conflicts-1)/float64(teamSize), 0, 100)
}

// PolicyCompliant is true when every rule other than balance and team
// coverage passed. Skipped rules count as passed.
func PolicyCompliant(results []ConstraintResult) bool {
	for _, r := range results {
		if r.RuleID == RuleBalance || r.RuleID == RuleTeamCoverage {
			continue
		}
		if !r.Passed {
			return false
		}
	}
	return true
}

// BuildFactors derives scoring inputs from rule results and patterns.
func BuildFactors(results []ConstraintResult, team TeamState, patterns []PatternFinding, requestedDays int) Factors {
	balanceOK := true
	for _, r := range results {
		if r.RuleID == RuleBalance && !r.Passed {
			balanceOK = false
		}
	}
	return Factors{
		BalanceSufficient:   balanceOK,
		TeamCapacityPercent: TeamCapacityPercent(team.TeamSize, team.Conflicts()),
		ConflictCount:       team.Conflicts(),
		PolicyCompliant:     PolicyCompliant(results),
		Patterns:            patterns,
		RequestedDays:       requestedDays,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
