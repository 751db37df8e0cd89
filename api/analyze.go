package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/notify"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// ANALYZE ENDPOINT
// =============================================================================

// AnalyzeLeaveRequest adjudicates one request. Any structurally valid body
// gets a 200 with a usable result, including NEEDS_INFO and ERROR.
func (h *Handler) AnalyzeLeaveRequest(w http.ResponseWriter, r *http.Request) {
	id := generic.EmployeeID(chi.URLParam(r, "id"))

	var req AnalyzeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	override, err := toOverride(req.Intent)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid intent", err)
		return
	}

	ctx := r.Context()
	snap := h.buildRequest(ctx, id, req.Text, override)
	res := h.Evaluator.Evaluate(ctx, snap)

	dto := toAnalysisDTO(res, string(id))
	h.recordDecision(ctx, id, res)
	if req.Persist && res.Decision.IsAdjudicated() {
		dto.Persisted = h.persistRequest(ctx, id, res)
	}
	if res.Decision.IsAdjudicated() && snap.Employee != nil {
		h.notify(ctx, res, *snap.Employee)
	}

	writeJSON(w, http.StatusOK, dto)
}

func toOverride(dto *IntentOverrideDTO) (*leave.Override, error) {
	if dto == nil {
		return nil, nil
	}
	ov := &leave.Override{Reason: dto.Reason}
	if dto.LeaveType != "" {
		lt, _ := leave.ParseLeaveType(strings.ToLower(dto.LeaveType))
		ov.LeaveType = lt
	}
	if dto.StartDate != "" {
		start, err := generic.ParseDate(dto.StartDate)
		if err != nil {
			return nil, err
		}
		ov.Start = start
	}
	if dto.EndDate != "" {
		end, err := generic.ParseDate(dto.EndDate)
		if err != nil {
			return nil, err
		}
		ov.End = end
	}
	return ov, nil
}

// =============================================================================
// SNAPSHOT ASSEMBLY
// =============================================================================

// buildRequest performs every lookup Evaluate needs. A failed employee or
// team lookup leaves the snapshot nil so the evaluator answers ERROR; history,
// holidays, blackouts and policy text degrade to empty.
func (h *Handler) buildRequest(ctx context.Context, id generic.EmployeeID, text string, override *leave.Override) leave.Request {
	log := h.Logger.With(zap.String("employee_id", string(id)))
	cfg := h.configs().Load()
	today := generic.DateOf(h.now())

	snap := leave.Request{Text: text, Override: override}

	holidays, err := h.Store.ListHolidays(ctx)
	if err != nil {
		log.Warn("holiday lookup failed, counting weekdays only", zap.Error(err))
	}
	snap.Holidays = holidays

	emp, err := h.Store.GetEmployee(ctx, id)
	if err != nil {
		log.Warn("employee lookup failed", zap.Error(err))
		return snap
	}
	if emp == nil {
		return snap
	}
	employee := emp.Employee
	snap.Employee = &employee

	team, ok := h.teamState(ctx, emp, text, override, today, holidays, cfg)
	if !ok {
		return snap
	}
	snap.Team = team

	since := today.AddDays(-cfg.HistoryWindowDays)
	history, err := h.Store.LeaveHistory(ctx, id, since, cfg.HistoryLimit)
	if err != nil {
		log.Warn("history lookup failed, skipping pattern detection", zap.Error(err))
	}
	snap.History = store.ToHistory(history)

	if lt := h.previewLeaveType(text, override); lt != "" {
		policy, err := h.Store.PolicyText(ctx, lt)
		if err != nil {
			log.Warn("policy lookup failed", zap.Error(err))
		}
		snap.PolicyText = policy
	}
	return snap
}

// teamState assembles the team snapshot for the requested period. Employees
// without a team get an empty snapshot, which skips coverage checks.
func (h *Handler) teamState(ctx context.Context, emp *store.EmployeeRecord, text string, override *leave.Override,
	today generic.TimePoint, holidays []generic.Holiday, cfg *leave.Config) (*leave.TeamState, bool) {
	log := h.Logger.With(zap.String("employee_id", string(emp.ID)), zap.String("team_id", string(emp.TeamID)))
	state := &leave.TeamState{}

	blackouts, err := h.Store.ListBlackouts(ctx, emp.TeamID)
	if err != nil {
		log.Warn("blackout lookup failed", zap.Error(err))
	}
	for _, b := range blackouts {
		state.Blackouts = append(state.Blackouts, b.BlackoutWindow)
	}

	if emp.TeamID == "" {
		return state, true
	}

	team, err := h.Store.GetTeam(ctx, emp.TeamID)
	if err != nil {
		log.Warn("team lookup failed", zap.Error(err))
		return nil, false
	}
	if team == nil {
		log.Warn("employee references unknown team")
		return nil, false
	}
	members, err := h.Store.TeamMembers(ctx, emp.TeamID)
	if err != nil {
		log.Warn("team member lookup failed", zap.Error(err))
		return nil, false
	}
	state.TeamSize = len(members)
	state.MinRequiredCoverage = team.MinRequiredCoverage
	state.MaxConcurrentLeave = team.MaxConcurrentLeave

	// Unparseable requests end as NEEDS_INFO; nobody needs to be counted away.
	period, err := h.extractor().ResolvePeriod(leave.ExtractInput{
		Text:         text,
		Override:     override,
		Today:        today,
		Calendar:     generic.NewStaticCalendar(holidays),
		Strict:       cfg.StrictDates,
		MaxRangeDays: cfg.MaxRangeDays,
	})
	if err != nil {
		return state, true
	}
	away, err := h.Store.MembersOnLeave(ctx, emp.TeamID, emp.ID, period)
	if err != nil {
		log.Warn("on-leave lookup failed", zap.Error(err))
		return nil, false
	}
	state.OnLeave = away
	state.OnLeaveCount = len(away)
	return state, true
}

func (h *Handler) extractor() *leave.Extractor {
	if h.Evaluator.Extractor != nil {
		return &leave.Extractor{Matchers: h.Evaluator.Extractor.Matchers}
	}
	return &leave.Extractor{}
}

func (h *Handler) previewLeaveType(text string, override *leave.Override) leave.LeaveType {
	if override != nil && override.LeaveType != "" {
		return override.LeaveType
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lt, _ := leave.ClassifyLeaveType(text)
	return lt
}

// =============================================================================
// AFTER ADJUDICATION
// =============================================================================

// recordDecision writes the decision log row. Failures are logged only.
func (h *Handler) recordDecision(ctx context.Context, id generic.EmployeeID, res *leave.Result) {
	entry := store.DecisionEntry{
		ID:           uuid.New().String(),
		EvaluationID: res.EvaluationID,
		EmployeeID:   id,
		LeaveType:    res.Intent.LeaveType,
		Decision:     res.Decision,
		Confidence:   res.Confidence,
		Days:         res.RequestedDays,
		Tone:         res.Tone.Tone,
		Urgency:      res.Urgency,
		TeamCapacity: res.TeamCapacity,
		TimingMs:     res.TimingMs(),
		CreatedAt:    h.now(),
	}
	if err := h.Store.SaveDecision(ctx, entry); err != nil {
		h.Logger.Warn("failed to log decision",
			zap.String("evaluation_id", res.EvaluationID), zap.Error(err))
	}
}

// persistRequest stores the adjudicated request: approved when auto-approved,
// pending otherwise.
func (h *Handler) persistRequest(ctx context.Context, id generic.EmployeeID, res *leave.Result) bool {
	status := store.StatusPending
	if res.Decision == leave.DecisionAutoApproved {
		status = store.StatusApproved
	}
	req := store.LeaveRequest{
		ID:           uuid.New().String(),
		EmployeeID:   id,
		EvaluationID: res.EvaluationID,
		LeaveType:    res.Intent.LeaveType,
		Period:       res.Intent.Period,
		Days:         res.RequestedDays,
		Reason:       res.Intent.Reason(),
		Status:       status,
		CreatedAt:    h.now(),
	}
	if err := h.Store.SaveLeaveRequest(ctx, req); err != nil {
		h.Logger.Error("failed to persist leave request",
			zap.String("evaluation_id", res.EvaluationID), zap.Error(err))
		return false
	}
	return true
}

func (h *Handler) notify(ctx context.Context, res *leave.Result, emp leave.Employee) {
	if h.Notifier == nil {
		return
	}
	ev := notify.EventFromResult(res, emp, h.now())
	if err := h.Notifier.Notify(ctx, ev); err != nil {
		h.Logger.Warn("decision notification failed",
			zap.String("evaluation_id", res.EvaluationID), zap.Error(err))
	}
}
