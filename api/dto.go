/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the leave package's model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Analysis:
    AnalyzeRequest, IntentOverrideDTO, AnalysisDTO (+ nested details)

  Directory:
    EmployeeDTO, CreateEmployeeRequest, UpdateBalancesRequest, HistoryDTO

  Roster:
    CreateTeamRequest, AddMemberRequest, BlackoutDTO, CreateBlackoutRequest

  Calendar:
    HolidayDTO, CreateHolidayRequest

  Admin:
    HealthDTO, MetricsDTO, ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags. Handlers call
  decodeAndValidate before touching any field.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: ConfigDocument served by /api/config
*/
package api

import (
	"time"

	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// ANALYSIS
// =============================================================================

// AnalyzeRequest is the body of POST /api/employees/{id}/leave-requests/analyze.
// Text is optional when Intent carries the type and dates.
type AnalyzeRequest struct {
	Text    string             `json:"text" validate:"max=4000"`
	Intent  *IntentOverrideDTO `json:"intent,omitempty"`
	Persist bool               `json:"persist"`
}

// IntentOverrideDTO lets a form-based client bypass text extraction.
type IntentOverrideDTO struct {
	LeaveType string `json:"leave_type,omitempty" validate:"omitempty,oneof=sick emergency annual personal maternity paternity bereavement study vacation"`
	StartDate string `json:"start_date,omitempty" validate:"required_with=EndDate,omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Reason    string `json:"reason,omitempty" validate:"max=1000"`
}

// AnalysisDTO is the evaluation result returned to clients.
type AnalysisDTO struct {
	EvaluationID   string            `json:"evaluation_id"`
	EmployeeID     string            `json:"employee_id"`
	Decision       string            `json:"decision"`
	Confidence     float64           `json:"confidence"`
	Leave          *LeaveDetailsDTO  `json:"leave,omitempty"`
	Violations     []ConstraintDTO   `json:"violations"`
	Constraints    []ConstraintDTO   `json:"constraints"`
	Patterns       []PatternDTO      `json:"patterns"`
	Factors        *FactorsDTO       `json:"factors,omitempty"`
	Considerations []string          `json:"considerations"`
	Suggestions    []string          `json:"suggestions"`
	Rationale      string            `json:"rationale"`
	Signals        *SignalsDTO       `json:"signals,omitempty"`
	Balance        *BalanceChangeDTO `json:"balance,omitempty"`
	Faults         []string          `json:"faults,omitempty"`
	Error          string            `json:"error,omitempty"`
	TimingMs       int64             `json:"timing_ms"`
	Persisted      bool              `json:"persisted"`
}

type LeaveDetailsDTO struct {
	LeaveType       string `json:"leave_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Days            int    `json:"days"`
	Reason          string `json:"reason"`
	RewrittenReason string `json:"rewritten_reason,omitempty"`
}

type ConstraintDTO struct {
	RuleID  string         `json:"rule_id"`
	Passed  bool           `json:"passed"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Skipped bool           `json:"skipped,omitempty"`
}

type PatternDTO struct {
	Kind        string  `json:"kind"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

type FactorsDTO struct {
	BalanceSufficient   bool    `json:"balance_sufficient"`
	TeamCapacityPercent float64 `json:"team_capacity_percent"`
	ConflictCount       int     `json:"conflict_count"`
	PolicyCompliant     bool    `json:"policy_compliant"`
	PatternCount        int     `json:"pattern_count"`
	RequestedDays       int     `json:"requested_days"`
}

type SignalsDTO struct {
	Tone           string  `json:"tone"`
	ToneConfidence float64 `json:"tone_confidence"`
	Urgency        string  `json:"urgency"`
}

type BalanceChangeDTO struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// =============================================================================
// DIRECTORY
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Email      string             `json:"email,omitempty"`
	Department string             `json:"department,omitempty"`
	TeamID     string             `json:"team_id,omitempty"`
	Balances   map[string]float64 `json:"balances"`
	CreatedAt  string             `json:"created_at,omitempty"`
}

// CreateEmployeeRequest is the request to create an employee.
type CreateEmployeeRequest struct {
	ID         string             `json:"id" validate:"required,max=64"`
	Name       string             `json:"name" validate:"required,max=200"`
	Email      string             `json:"email" validate:"omitempty,email"`
	Department string             `json:"department"`
	TeamID     string             `json:"team_id"`
	Balances   map[string]float64 `json:"balances" validate:"dive,keys,required,endkeys,gte=0"`
}

// UpdateBalancesRequest sets one or more balances; types not listed are kept.
type UpdateBalancesRequest struct {
	Balances map[string]float64 `json:"balances" validate:"required,min=1,dive,keys,required,endkeys,gte=0"`
}

type HistoryDTO struct {
	ID           string `json:"id"`
	EvaluationID string `json:"evaluation_id,omitempty"`
	LeaveType    string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Days         int    `json:"days"`
	Reason       string `json:"reason,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at,omitempty"`
}

// =============================================================================
// ROSTER
// =============================================================================

type CreateTeamRequest struct {
	ID                  string `json:"id" validate:"required,max=64"`
	Name                string `json:"name" validate:"required"`
	MinRequiredCoverage int    `json:"min_required_coverage" validate:"gte=0"`
	MaxConcurrentLeave  int    `json:"max_concurrent_leave" validate:"gte=0"`
}

type AddMemberRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
}

type BlackoutDTO struct {
	ID        string `json:"id"`
	TeamID    string `json:"team_id,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Label     string `json:"label"`
}

// CreateBlackoutRequest creates a window. An empty team_id applies company-wide.
type CreateBlackoutRequest struct {
	TeamID    string `json:"team_id"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
	Label     string `json:"label" validate:"required"`
}

// =============================================================================
// CALENDAR
// =============================================================================

type HolidayDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Recurring bool   `json:"recurring"`
}

type CreateHolidayRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Name      string `json:"name" validate:"required"`
	Recurring bool   `json:"recurring"`
}

// =============================================================================
// ADMIN
// =============================================================================

type HealthDTO struct {
	Status     string             `json:"status"`
	Database   string             `json:"database"`
	LLM        string             `json:"llm"`
	Thresholds map[string]float64 `json:"thresholds"`
	Scenario   string             `json:"scenario,omitempty"`
	Time       string             `json:"time"`
}

type MetricsDTO struct {
	Since             string  `json:"since"`
	Total             int     `json:"total"`
	AutoApproved      int     `json:"auto_approved"`
	EscalatedManager  int     `json:"escalated_manager"`
	EscalatedHR       int     `json:"escalated_hr"`
	NeedsInfo         int     `json:"needs_info"`
	Errors            int     `json:"errors"`
	AutoApprovalRate  float64 `json:"auto_approval_rate"`
	AverageConfidence float64 `json:"average_confidence"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Text        string `json:"text"`
	EmployeeID  string `json:"employee_id"`
	Expected    string `json:"expected"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEmployeeDTO(emp store.EmployeeRecord) EmployeeDTO {
	balances := make(map[string]float64, len(emp.Balances))
	for lt, a := range emp.Balances {
		balances[string(lt)] = a.Float()
	}
	dto := EmployeeDTO{
		ID:         string(emp.ID),
		Name:       emp.Name,
		Email:      emp.Email,
		Department: emp.Department,
		TeamID:     string(emp.TeamID),
		Balances:   balances,
	}
	if !emp.CreatedAt.IsZero() {
		dto.CreatedAt = emp.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toHistoryDTO(r store.LeaveRequest) HistoryDTO {
	dto := HistoryDTO{
		ID:           r.ID,
		EvaluationID: r.EvaluationID,
		LeaveType:    string(r.LeaveType),
		StartDate:    r.Period.Start.String(),
		EndDate:      r.Period.End.String(),
		Days:         r.Days,
		Reason:       r.Reason,
		Status:       r.Status,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toConstraintDTOs(results []leave.ConstraintResult) []ConstraintDTO {
	out := make([]ConstraintDTO, 0, len(results))
	for _, r := range results {
		out = append(out, ConstraintDTO{
			RuleID:  string(r.RuleID),
			Passed:  r.Passed,
			Message: r.Message,
			Details: r.Details,
			Skipped: r.Skipped,
		})
	}
	return out
}

// toAnalysisDTO flattens a result. NEEDS_INFO and ERROR results carry only
// the decision, rationale and error.
func toAnalysisDTO(res *leave.Result, employeeID string) AnalysisDTO {
	dto := AnalysisDTO{
		EvaluationID:   res.EvaluationID,
		EmployeeID:     employeeID,
		Decision:       string(res.Decision),
		Confidence:     res.Confidence,
		Violations:     toConstraintDTOs(res.Violations),
		Constraints:    toConstraintDTOs(res.Results),
		Patterns:       make([]PatternDTO, 0, len(res.Patterns)),
		Considerations: nonNil(res.Issues),
		Suggestions:    nonNil(res.Suggestions),
		Rationale:      res.Rationale,
		Faults:         res.Faults,
		TimingMs:       res.TimingMs(),
	}
	if res.Err != nil {
		dto.Error = res.Err.Error()
	}
	if !res.Decision.IsAdjudicated() {
		return dto
	}

	dto.Leave = &LeaveDetailsDTO{
		LeaveType:       string(res.Intent.LeaveType),
		StartDate:       res.Intent.Start().String(),
		EndDate:         res.Intent.End().String(),
		Days:            res.RequestedDays,
		Reason:          res.Intent.RawReason,
		RewrittenReason: res.Intent.RewrittenReason,
	}
	for _, p := range res.Patterns {
		dto.Patterns = append(dto.Patterns, PatternDTO{
			Kind:        string(p.Kind),
			Confidence:  p.Confidence,
			Description: p.Description,
		})
	}
	dto.Factors = &FactorsDTO{
		BalanceSufficient:   res.Factors.BalanceSufficient,
		TeamCapacityPercent: res.Factors.TeamCapacityPercent,
		ConflictCount:       res.Factors.ConflictCount,
		PolicyCompliant:     res.Factors.PolicyCompliant,
		PatternCount:        len(res.Factors.Patterns),
		RequestedDays:       res.Factors.RequestedDays,
	}
	dto.Signals = &SignalsDTO{
		Tone:           string(res.Tone.Tone),
		ToneConfidence: res.Tone.Confidence,
		Urgency:        string(res.Urgency),
	}
	dto.Balance = &BalanceChangeDTO{
		Before: res.BalanceBefore.Float(),
		After:  res.BalanceAfter.Float(),
	}
	return dto
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
