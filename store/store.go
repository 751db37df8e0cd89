/*
Package store defines the persistence contract of the leave service.

PURPOSE:
  The adjudication pipeline never touches storage. The transport layer reads
  snapshots through this interface before calling leave.Evaluate and writes
  the outcome afterwards. Implementations: SQLite for production, memory for
  tests and demos.

KEY INTERFACES:
  Directory:     Employees and their per-type balances
  Roster:        Teams, membership, who is away, blackout windows
  Calendar:      Company holidays
  Records:       Leave requests (history for pattern detection)
  DecisionLog:   One row per adjudication, aggregated for metrics
  PolicyLibrary: Policy snippets quoted in rationale text
  Repository:    All of the above plus Ping and Reset

NOT FOUND:
  Single-record getters return (nil, nil) when the record doesn't exist.
  Callers turn that into a leave.LookupError.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go
  - store/memory/memory.go

SEE ALSO:
  - api/analyze.go: Builds leave.Request from a Repository
*/
package store

import (
	"context"
	"time"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// RECORDS
// =============================================================================

// EmployeeRecord is the stored employee: the snapshot the evaluator reads
// plus directory fields it doesn't need.
type EmployeeRecord struct {
	leave.Employee
	Email     string
	TeamID    generic.TeamID
	CreatedAt time.Time
}

type Team struct {
	ID                  generic.TeamID
	Name                string
	MinRequiredCoverage int
	MaxConcurrentLeave  int
}

// Blackout is a stored blackout window. An empty TeamID applies company-wide.
type Blackout struct {
	ID     string
	TeamID generic.TeamID
	leave.BlackoutWindow
}

// Request statuses written after adjudication.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
)

type LeaveRequest struct {
	ID           string
	EmployeeID   generic.EmployeeID
	EvaluationID string
	LeaveType    leave.LeaveType
	Period       generic.Period
	Days         int
	Reason       string
	Status       string
	CreatedAt    time.Time
}

type DecisionEntry struct {
	ID           string
	EvaluationID string
	EmployeeID   generic.EmployeeID
	LeaveType    leave.LeaveType
	Decision     leave.Decision
	Confidence   float64
	Days         int
	Tone         leave.Tone
	Urgency      leave.Urgency
	TeamCapacity float64
	TimingMs     int64
	CreatedAt    time.Time
}

// DecisionStats aggregates the decision log since a point in time.
type DecisionStats struct {
	Total             int
	AutoApproved      int
	EscalatedManager  int
	EscalatedHR       int
	NeedsInfo         int
	Errors            int
	AverageConfidence float64
}

// AutoApprovalRate is the share of adjudicated requests approved automatically.
func (s DecisionStats) AutoApprovalRate() float64 {
	adjudicated := s.AutoApproved + s.EscalatedManager + s.EscalatedHR
	if adjudicated == 0 {
		return 0
	}
	return float64(s.AutoApproved) / float64(adjudicated)
}

type PolicySnippet struct {
	ID        string
	LeaveType leave.LeaveType
	Title     string
	Body      string
}

// =============================================================================
// INTERFACES
// =============================================================================

type Directory interface {
	SaveEmployee(ctx context.Context, emp EmployeeRecord) error
	GetEmployee(ctx context.Context, id generic.EmployeeID) (*EmployeeRecord, error)
	ListEmployees(ctx context.Context) ([]EmployeeRecord, error)
	SetBalance(ctx context.Context, id generic.EmployeeID, lt leave.LeaveType, amount generic.Amount) error
}

type Roster interface {
	SaveTeam(ctx context.Context, team Team) error
	GetTeam(ctx context.Context, id generic.TeamID) (*Team, error)
	AddTeamMember(ctx context.Context, teamID generic.TeamID, employeeID generic.EmployeeID) error
	TeamMembers(ctx context.Context, teamID generic.TeamID) ([]EmployeeRecord, error)
	// MembersOnLeave returns names of team members other than exclude with
	// approved leave overlapping p.
	MembersOnLeave(ctx context.Context, teamID generic.TeamID, exclude generic.EmployeeID, p generic.Period) ([]string, error)
	SaveBlackout(ctx context.Context, b Blackout) error
	// ListBlackouts returns the team's windows plus company-wide ones.
	// An empty teamID returns every window.
	ListBlackouts(ctx context.Context, teamID generic.TeamID) ([]Blackout, error)
}

type Calendar interface {
	SaveHoliday(ctx context.Context, h generic.Holiday) error
	ListHolidays(ctx context.Context) ([]generic.Holiday, error)
}

type Records interface {
	SaveLeaveRequest(ctx context.Context, r LeaveRequest) error
	// LeaveHistory returns the employee's requests starting on or after
	// since, newest first, at most limit (0 = all).
	LeaveHistory(ctx context.Context, employeeID generic.EmployeeID, since generic.TimePoint, limit int) ([]LeaveRequest, error)
}

type DecisionLog interface {
	SaveDecision(ctx context.Context, d DecisionEntry) error
	DecisionStats(ctx context.Context, since time.Time) (DecisionStats, error)
}

type PolicyLibrary interface {
	SavePolicySnippet(ctx context.Context, p PolicySnippet) error
	// PolicyText returns the snippet body for a leave type, "" when none.
	PolicyText(ctx context.Context, lt leave.LeaveType) (string, error)
}

type Repository interface {
	Directory
	Roster
	Calendar
	Records
	DecisionLog
	PolicyLibrary
	Ping(ctx context.Context) error
	Reset(ctx context.Context) error
}

// ToHistory converts stored requests into the evaluator's history snapshot.
func ToHistory(reqs []LeaveRequest) []leave.HistoryRecord {
	out := make([]leave.HistoryRecord, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, leave.HistoryRecord{
			LeaveType: r.LeaveType,
			Start:     r.Period.Start,
			End:       r.Period.End,
			Reason:    r.Reason,
			Status:    r.Status,
		})
	}
	return out
}
