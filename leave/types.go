/*
Package leave adjudicates employee leave requests.

PURPOSE:
  Turns a free-text or structured leave request into a decision. The pipeline
  is a pure, request-scoped computation over snapshots supplied by the caller:

    text -> Extractor -> Rules -> Patterns -> Score -> Decide -> Compose

  No step performs I/O. Directory, roster, history and policy lookups happen
  in the transport layer before Evaluate is called.

KEY CONCEPTS IN THIS FILE (types.go):
  - LeaveType: Enumerated leave category (sick, annual, maternity, ...)
  - Intent: The structured (type, date range, reason) of a request
  - Employee / TeamState / HistoryRecord: Caller-supplied snapshots
  - ConstraintResult / PatternFinding: Per-evaluation findings
  - Decision: The outcome. There is no rejection state.

DESIGN PRINCIPLES:
  1. Snapshots in, value out: Evaluate never mutates its inputs
  2. Never reject: every adjudicated request is approved or escalated
  3. Determinism: identical inputs produce identical results and scores

SEE ALSO:
  - evaluator.go: The single Evaluate entry point
  - rules.go: The closed set of constraint rules
  - config.go: Thresholds and rule parameters
*/
package leave

import (
	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// LEAVE TYPE
// =============================================================================

type LeaveType string

const (
	LeaveSick        LeaveType = "sick"
	LeaveEmergency   LeaveType = "emergency"
	LeaveAnnual      LeaveType = "annual"
	LeavePersonal    LeaveType = "personal"
	LeaveMaternity   LeaveType = "maternity"
	LeavePaternity   LeaveType = "paternity"
	LeaveBereavement LeaveType = "bereavement"
	LeaveStudy       LeaveType = "study"
)

// AllLeaveTypes lists every supported category in a stable order.
var AllLeaveTypes = []LeaveType{
	LeaveSick, LeaveEmergency, LeaveAnnual, LeavePersonal,
	LeaveMaternity, LeavePaternity, LeaveBereavement, LeaveStudy,
}

// ParseLeaveType accepts the canonical names plus "vacation" as an alias
// for annual leave.
func ParseLeaveType(s string) (LeaveType, bool) {
	if s == "vacation" {
		return LeaveAnnual, true
	}
	for _, lt := range AllLeaveTypes {
		if string(lt) == s {
			return lt, true
		}
	}
	return "", false
}

// Label is the human-readable form used in rationale text.
func (t LeaveType) Label() string {
	switch t {
	case LeaveAnnual:
		return "annual leave"
	case LeaveSick:
		return "sick leave"
	case LeaveEmergency:
		return "emergency leave"
	case LeavePersonal:
		return "personal leave"
	case LeaveMaternity:
		return "maternity leave"
	case LeavePaternity:
		return "paternity leave"
	case LeaveBereavement:
		return "bereavement leave"
	case LeaveStudy:
		return "study leave"
	}
	return string(t) + " leave"
}

// =============================================================================
// INTENT
// =============================================================================

// Intent is the structured form of a leave request. It is produced once per
// evaluation and never modified afterwards.
type Intent struct {
	LeaveType       LeaveType      `json:"leave_type"`
	Period          generic.Period `json:"-"`
	RawReason       string         `json:"raw_reason"`
	RewrittenReason string         `json:"rewritten_reason,omitempty"`
	// DurationDays is set when the text named an explicit length ("5 days").
	DurationDays int `json:"duration_days,omitempty"`
}

func (i Intent) Start() generic.TimePoint { return i.Period.Start }
func (i Intent) End() generic.TimePoint   { return i.Period.End }

// Reason returns the rewritten reason when present, otherwise the raw text.
func (i Intent) Reason() string {
	if i.RewrittenReason != "" {
		return i.RewrittenReason
	}
	return i.RawReason
}

// Override carries caller-provided intent fields. Zero fields are ignored.
type Override struct {
	LeaveType LeaveType
	Start     generic.TimePoint
	End       generic.TimePoint
	Reason    string
}

func (o *Override) hasDates() bool {
	return o != nil && !o.Start.IsZero()
}

// =============================================================================
// SNAPSHOTS - Owned by external collaborators, read-only here
// =============================================================================

type Employee struct {
	ID         generic.EmployeeID `validate:"required"`
	Name       string             `validate:"required"`
	Department string
	// Balances holds remaining days per leave type. Missing types fall back
	// to the configured statutory allowance or zero.
	Balances map[LeaveType]generic.Amount
}

// BlackoutWindow is a date range during which leave should not be taken.
type BlackoutWindow struct {
	Period generic.Period
	Label  string
}

type TeamState struct {
	TeamSize            int `validate:"gte=0"`
	OnLeaveCount        int `validate:"gte=0"`
	OnLeave             []string
	MinRequiredCoverage int `validate:"gte=0"`
	// MaxConcurrentLeave of 0 means "use Config.DefaultMaxConcurrent".
	MaxConcurrentLeave int `validate:"gte=0"`
	Blackouts          []BlackoutWindow
}

// HistoryRecord is one past leave request of the employee.
type HistoryRecord struct {
	LeaveType LeaveType
	Start     generic.TimePoint
	End       generic.TimePoint
	Reason    string
	Status    string
}

// =============================================================================
// FINDINGS
// =============================================================================

type RuleID string

const (
	RuleBlackout         RuleID = "blackout"
	RuleNoticePeriod     RuleID = "notice_period"
	RuleTeamCoverage     RuleID = "team_coverage"
	RuleMaxConcurrent    RuleID = "max_concurrent"
	RuleBalance          RuleID = "balance"
	RuleMaxDuration      RuleID = "max_duration"
	RuleConsecutiveLimit RuleID = "consecutive_limit"
)

// ConstraintResult is the outcome of one rule for one evaluation.
type ConstraintResult struct {
	RuleID  RuleID         `json:"rule_id"`
	Passed  bool           `json:"passed"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	// Skipped is set when the rule faulted; a skipped rule counts as passed.
	Skipped bool   `json:"skipped,omitempty"`
	Fault   string `json:"fault,omitempty"`
}

type PatternKind string

const (
	PatternWeekdayAdjacent PatternKind = "frequent_weekday_adjacent"
	PatternFrequentUrgent  PatternKind = "frequent_emergency"
	PatternRecurringPeriod PatternKind = "recurring_period"
)

// PatternFinding is an advisory signal. Confidence is always in [0, 1].
type PatternFinding struct {
	Kind        PatternKind `json:"kind"`
	Confidence  float64     `json:"confidence"`
	Description string      `json:"description"`
}

// =============================================================================
// DECISION
// =============================================================================

type Decision string

const (
	DecisionAutoApproved      Decision = "AUTO_APPROVED"
	DecisionEscalateToManager Decision = "ESCALATE_TO_MANAGER"
	DecisionEscalateToHR      Decision = "ESCALATE_TO_HR"
	DecisionNeedsInfo         Decision = "NEEDS_INFO"
	DecisionError             Decision = "ERROR"
)

// IsEscalation returns true for outcomes routed to a human.
func (d Decision) IsEscalation() bool {
	return d == DecisionEscalateToManager || d == DecisionEscalateToHR
}

// IsAdjudicated returns false for the pre-evaluation failures.
func (d Decision) IsAdjudicated() bool {
	return d == DecisionAutoApproved || d.IsEscalation()
}
