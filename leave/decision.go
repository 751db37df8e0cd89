package leave

// =============================================================================
// DECISION POLICY
// =============================================================================
//
// Transitions, with T_auto and T_esc read from Config:
//
//   score >= T_auto              -> AUTO_APPROVED
//   T_esc <= score < T_auto      -> ESCALATE_TO_HR if days > 10 else ESCALATE_TO_MANAGER
//   score < T_esc                -> ESCALATE_TO_HR
//
// There is no rejection outcome. NEEDS_INFO and ERROR are produced before
// scoring and never reach this function.

// LongLeaveDays is the length above which mid-band escalations go to HR.
const LongLeaveDays = 10

// Decide maps a score and request length to an outcome. Total and pure.
func Decide(score float64, requestedDays int, cfg *Config) Decision {
	switch {
	case score >= cfg.AutoApproveThreshold:
		return DecisionAutoApproved
	case score >= cfg.EscalateThreshold:
		if requestedDays > LongLeaveDays {
			return DecisionEscalateToHR
		}
		return DecisionEscalateToManager
	default:
		return DecisionEscalateToHR
	}
}
