/*
handlers.go - HTTP API handlers for the leave service

PURPOSE:
  Exposes the leave adjudication pipeline via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the leave package.

ENDPOINTS:
  Analysis:
    POST   /api/employees/{id}/leave-requests/analyze  Adjudicate a request

  Employees:
    GET    /api/employees                List all employees
    POST   /api/employees                Create or replace an employee
    GET    /api/employees/{id}           Get employee with balances
    PUT    /api/employees/{id}/balances  Set balances
    GET    /api/employees/{id}/history   Recent leave requests

  Roster:
    POST   /api/teams                    Create or replace a team
    POST   /api/teams/{id}/members       Add an employee to a team
    GET    /api/blackouts                List blackout windows (?team_id=)
    POST   /api/blackouts                Create a blackout window

  Calendar:
    GET    /api/holidays                 List holidays
    POST   /api/holidays                 Create a holiday

  Admin:
    GET    /api/config                   Current adjudication config
    PUT    /api/config                   Merge a config document
    GET    /api/health                   Database / LLM status, thresholds
    GET    /api/metrics                  Today's decision totals
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/load           Load a demo scenario

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: store.Repository (SQLite in production, memory in tests)
  - Evaluator: the leave pipeline, reading leave.ConfigStore snapshots
  - Notifier: Kafka/Slack fan-out for decisions

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors
  The analyze endpoint is the exception: NEEDS_INFO and ERROR outcomes are
  results, returned with 200.

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - analyze.go: Snapshot assembly and the analyze endpoint
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/notify"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     store.Repository
	Evaluator *leave.Evaluator
	Notifier  notify.Notifier
	Logger    *zap.Logger
	// LLMEnabled is reported by /api/health.
	LLMEnabled bool
	Now        func() time.Time

	mu              sync.RWMutex
	currentScenario string
}

var validate = validator.New()

// NewHandler creates a new handler. A nil evaluator gets default config.
func NewHandler(repo store.Repository, evaluator *leave.Evaluator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if evaluator == nil {
		evaluator = leave.NewEvaluator(nil, logger.Named("leave"))
	}
	return &Handler{
		Store:     repo,
		Evaluator: evaluator,
		Notifier:  notify.Nop{},
		Logger:    logger,
		Now:       time.Now,
	}
}

func (h *Handler) configs() *leave.ConfigStore {
	if h.Evaluator.Configs == nil {
		h.Evaluator.Configs = leave.NewConfigStore(nil)
	}
	return h.Evaluator.Configs
}

func (h *Handler) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

// =============================================================================
// EMPLOYEE ENDPOINTS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, 0, len(employees))
	for _, emp := range employees {
		dtos = append(dtos, toEmployeeDTO(emp))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates or replaces an employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	balances, err := parseBalances(req.Balances)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid balances", err)
		return
	}

	emp := store.EmployeeRecord{
		Employee: leave.Employee{
			ID:         generic.EmployeeID(req.ID),
			Name:       req.Name,
			Department: req.Department,
			Balances:   balances,
		},
		Email:  req.Email,
		TeamID: generic.TeamID(req.TeamID),
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// UpdateBalances sets the listed balances.
func (h *Handler) UpdateBalances(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	var req UpdateBalancesRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	balances, err := parseBalances(req.Balances)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid balances", err)
		return
	}

	for lt, amount := range balances {
		if err := h.Store.SetBalance(r.Context(), id, lt, amount); err != nil {
			if generic.IsNotFound(err) {
				writeError(w, http.StatusNotFound, "Employee not found", nil)
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to update balance", err)
			return
		}
	}

	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil || emp == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// GetHistory returns the employee's requests inside the pattern window.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))
	cfg := h.configs().Load()
	since := generic.DateOf(h.now()).AddDays(-cfg.HistoryWindowDays)

	reqs, err := h.Store.LeaveHistory(r.Context(), id, since, 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get history", err)
		return
	}

	dtos := make([]HistoryDTO, 0, len(reqs))
	for _, req := range reqs {
		dtos = append(dtos, toHistoryDTO(req))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func parseBalances(in map[string]float64) (map[leave.LeaveType]generic.Amount, error) {
	out := make(map[leave.LeaveType]generic.Amount, len(in))
	for name, days := range in {
		lt, ok := leave.ParseLeaveType(name)
		if !ok {
			return nil, fmt.Errorf("unknown leave type %q", name)
		}
		if days < 0 {
			return nil, fmt.Errorf("%s: %w", name, generic.ErrNegativeAmount)
		}
		out[lt] = generic.NewAmount(days, generic.UnitDays)
	}
	return out, nil
}

// =============================================================================
// ROSTER ENDPOINTS
// =============================================================================

// CreateTeam creates or replaces a team.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	team := store.Team{
		ID:                  generic.TeamID(req.ID),
		Name:                req.Name,
		MinRequiredCoverage: req.MinRequiredCoverage,
		MaxConcurrentLeave:  req.MaxConcurrentLeave,
	}
	if err := h.Store.SaveTeam(r.Context(), team); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create team", err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

// AddTeamMember moves an employee into the team.
func (h *Handler) AddTeamMember(w http.ResponseWriter, r *http.Request) {
	teamID := generic.TeamID(chi.URLParam(r, "id"))

	var req AddMemberRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	team, err := h.Store.GetTeam(r.Context(), teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get team", err)
		return
	}
	if team == nil {
		writeError(w, http.StatusNotFound, "Team not found", nil)
		return
	}

	if err := h.Store.AddTeamMember(r.Context(), teamID, generic.EmployeeID(req.EmployeeID)); err != nil {
		if generic.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Employee not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to add member", err)
		return
	}

	members, err := h.Store.TeamMembers(r.Context(), teamID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list members", err)
		return
	}
	dtos := make([]EmployeeDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toEmployeeDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListBlackouts returns windows for ?team_id= (plus company-wide), or all.
func (h *Handler) ListBlackouts(w http.ResponseWriter, r *http.Request) {
	blackouts, err := h.Store.ListBlackouts(r.Context(), generic.TeamID(r.URL.Query().Get("team_id")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list blackouts", err)
		return
	}

	dtos := make([]BlackoutDTO, 0, len(blackouts))
	for _, b := range blackouts {
		dtos = append(dtos, BlackoutDTO{
			ID:        b.ID,
			TeamID:    string(b.TeamID),
			StartDate: b.Period.Start.String(),
			EndDate:   b.Period.End.String(),
			Label:     b.Label,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateBlackout(w http.ResponseWriter, r *http.Request) {
	var req CreateBlackoutRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	start, _ := generic.ParseDate(req.StartDate)
	end, _ := generic.ParseDate(req.EndDate)
	period, err := generic.NewPeriod(start, end)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must not be before start_date", err)
		return
	}

	b := store.Blackout{
		ID:             uuid.New().String(),
		TeamID:         generic.TeamID(req.TeamID),
		BlackoutWindow: leave.BlackoutWindow{Period: period, Label: req.Label},
	}
	if err := h.Store.SaveBlackout(r.Context(), b); err != nil {
		if generic.IsClientError(err) {
			writeError(w, http.StatusBadRequest, "Invalid blackout", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create blackout", err)
		return
	}
	writeJSON(w, http.StatusCreated, BlackoutDTO{
		ID:        b.ID,
		TeamID:    req.TeamID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Label:     req.Label,
	})
}

// =============================================================================
// HOLIDAY ENDPOINTS
// =============================================================================

func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.Store.ListHolidays(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get holidays", err)
		return
	}

	dtos := make([]HolidayDTO, 0, len(holidays))
	for _, hol := range holidays {
		dtos = append(dtos, HolidayDTO{
			ID:        hol.ID,
			Date:      hol.Date.String(),
			Name:      hol.Name,
			Recurring: hol.Recurring,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req CreateHolidayRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	date, _ := generic.ParseDate(req.Date)
	hol := generic.Holiday{
		ID:        uuid.New().String(),
		Date:      date,
		Name:      req.Name,
		Recurring: req.Recurring,
	}
	if err := h.Store.SaveHoliday(r.Context(), hol); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create holiday", err)
		return
	}
	writeJSON(w, http.StatusCreated, HolidayDTO{
		ID:        hol.ID,
		Date:      req.Date,
		Name:      req.Name,
		Recurring: req.Recurring,
	})
}

// =============================================================================
// ADMIN ENDPOINTS
// =============================================================================

// GetConfig returns the current adjudication config as a document.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, factory.ToDocument(h.configs().Load()))
}

// UpdateConfig merges a partial document into the current config. Requests
// already in flight keep the snapshot they started with.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var doc factory.ConfigDocument
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	next, err := h.configs().Update(func(cfg *leave.Config) error {
		merged, err := factory.Apply(cfg, doc)
		if err != nil {
			return err
		}
		*cfg = *merged
		return nil
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid configuration", err)
		return
	}

	h.Logger.Info("adjudication config updated",
		zap.Float64("auto_approve", next.AutoApproveThreshold),
		zap.Float64("escalate", next.EscalateThreshold),
	)
	writeJSON(w, http.StatusOK, factory.ToDocument(next))
}

// Health reports database reachability, LLM availability and thresholds.
// Always 200 so dashboards can render a degraded state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	cfg := h.configs().Load()
	dto := HealthDTO{
		Status:   "ok",
		Database: "ok",
		LLM:      "disabled",
		Thresholds: map[string]float64{
			"auto_approve": cfg.AutoApproveThreshold,
			"escalate":     cfg.EscalateThreshold,
		},
		Scenario: h.CurrentScenario(),
		Time:     h.now().UTC().Format(time.RFC3339),
	}
	if h.LLMEnabled {
		dto.LLM = "enabled"
	}
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Logger.Warn("health check: database unreachable", zap.Error(err))
		dto.Status = "degraded"
		dto.Database = "unavailable"
	}
	writeJSON(w, http.StatusOK, dto)
}

// Metrics aggregates today's decision log.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	stats, err := h.Store.DecisionStats(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute metrics", err)
		return
	}
	writeJSON(w, http.StatusOK, MetricsDTO{
		Since:             since.UTC().Format(time.RFC3339),
		Total:             stats.Total,
		AutoApproved:      stats.AutoApproved,
		EscalatedManager:  stats.EscalatedManager,
		EscalatedHR:       stats.EscalatedHR,
		NeedsInfo:         stats.NeedsInfo,
		Errors:            stats.Errors,
		AutoApprovalRate:  stats.AutoApprovalRate(),
		AverageConfidence: stats.AverageConfidence,
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// decodeAndValidate decodes the JSON body into dst and runs struct
// validation, writing a 400 and returning false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Code: "validation", Details: fields})
			return false
		}
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}
