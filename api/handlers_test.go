package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/notify"
	"github.com/warp/leave-engine/store"
	"github.com/warp/leave-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// Wednesday 2025-03-05, 09:30 UTC.
func fixedNow() time.Time {
	return time.Date(2025, time.March, 5, 9, 30, 0, 0, time.UTC)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.Event
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func setupTestHandler(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ev := leave.NewEvaluator(leave.NewConfigStore(nil), zap.NewNop())
	ev.Now = fixedNow
	ev.Composer = &leave.Composer{Source: leave.FirstSource{}}

	h := NewHandler(repo, ev, zap.NewNop())
	h.Now = fixedNow
	return h, NewRouter(h)
}

func seeded(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	h, router := setupTestHandler(t)
	require.NoError(t, SeedDemo(context.Background(), h.Store))
	return h, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func analyze(t *testing.T, router http.Handler, employeeID string, body AnalyzeRequest) AnalysisDTO {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/employees/"+employeeID+"/leave-requests/analyze", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dto AnalysisDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	return dto
}

// =============================================================================
// ANALYZE
// =============================================================================

func TestAnalyze_SickToday(t *testing.T) {
	// GIVEN: The demo organisation
	// WHEN: Alice reports sick today
	// THEN: Auto-approved with full confidence and a one-day sick leave
	_, router := seeded(t)

	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "I'm sick today"})

	assert.Equal(t, "AUTO_APPROVED", dto.Decision)
	assert.Equal(t, 100.0, dto.Confidence)
	require.NotNil(t, dto.Leave)
	assert.Equal(t, "sick", dto.Leave.LeaveType)
	assert.Equal(t, "2025-03-05", dto.Leave.StartDate)
	assert.Equal(t, 1, dto.Leave.Days)
	assert.Empty(t, dto.Violations)
	assert.NotEmpty(t, dto.Rationale)
	assert.False(t, dto.Persisted)
}

func TestAnalyze_UnknownEmployeeIsErrorNot404(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: Analyzing for an employee that doesn't exist
	// THEN: 200 with an ERROR decision
	_, router := setupTestHandler(t)

	dto := analyze(t, router, "ghost", AnalyzeRequest{Text: "I'm sick today"})

	assert.Equal(t, "ERROR", dto.Decision)
	assert.NotEmpty(t, dto.Error)
	assert.Nil(t, dto.Leave)
}

func TestAnalyze_EmptyTextNeedsInfo(t *testing.T) {
	_, router := seeded(t)

	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "   "})

	assert.Equal(t, "NEEDS_INFO", dto.Decision)
	assert.Contains(t, dto.Rationale, "Please include the leave type and the dates")
}

func TestAnalyze_OversizedRangeNeedsInfo(t *testing.T) {
	_, router := seeded(t)

	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "annual leave from 0001-01-01 to 9999-12-31"})

	assert.Equal(t, "NEEDS_INFO", dto.Decision)
	assert.Contains(t, dto.Error, "at most 366 days")
}

func TestAnalyze_StrictDatesNeedsInfo(t *testing.T) {
	// GIVEN: Strict date parsing switched on at runtime
	h, router := seeded(t)
	_, err := h.Evaluator.Configs.Update(func(cfg *leave.Config) error {
		cfg.StrictDates = true
		return nil
	})
	require.NoError(t, err)

	// WHEN: The text has no date
	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "I would like some time off"})

	// THEN: The employee is asked for dates
	assert.Equal(t, "NEEDS_INFO", dto.Decision)
}

func TestAnalyze_IntentOverride(t *testing.T) {
	_, router := seeded(t)

	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{
		Intent: &IntentOverrideDTO{
			LeaveType: "annual",
			StartDate: "2025-04-14",
			EndDate:   "2025-04-16",
			Reason:    "family visit",
		},
	})

	assert.Equal(t, "AUTO_APPROVED", dto.Decision)
	require.NotNil(t, dto.Leave)
	assert.Equal(t, "annual", dto.Leave.LeaveType)
	assert.Equal(t, 3, dto.Leave.Days)
	assert.Equal(t, "family visit", dto.Leave.Reason)
	require.NotNil(t, dto.Balance)
	assert.Equal(t, 15.0, dto.Balance.Before)
	assert.Equal(t, 12.0, dto.Balance.After)
}

func TestAnalyze_IntentOverrideStartOnly(t *testing.T) {
	_, router := seeded(t)

	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{
		Intent: &IntentOverrideDTO{LeaveType: "annual", StartDate: "2025-04-14"},
	})

	// A missing end date means a single day
	assert.Equal(t, "AUTO_APPROVED", dto.Decision)
	require.NotNil(t, dto.Leave)
	assert.Equal(t, "2025-04-14", dto.Leave.EndDate)
	assert.Equal(t, 1, dto.Leave.Days)
}

func TestAnalyze_BadBodies(t *testing.T) {
	_, router := seeded(t)
	path := "/api/employees/" + demoEmployeeID + "/leave-requests/analyze"

	tests := []struct {
		name string
		body any
	}{
		{"malformed json", `{"text": `},
		{"bad start date", AnalyzeRequest{Intent: &IntentOverrideDTO{StartDate: "15/04/2025"}}},
		{"unknown leave type", AnalyzeRequest{Intent: &IntentOverrideDTO{LeaveType: "sabbatical"}}},
		{"end date without start", AnalyzeRequest{Intent: &IntentOverrideDTO{LeaveType: "annual", EndDate: "2025-04-09"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAnalyze_CountsTeammatesAway(t *testing.T) {
	// GIVEN: Three teammates with approved leave this week, one pending
	h, router := seeded(t)
	ctx := context.Background()
	week := generic.Period{Start: generic.NewTimePoint(2025, 3, 3), End: generic.NewTimePoint(2025, 3, 7)}
	for i, id := range []string{"emp-002", "emp-003", "emp-004", "emp-005"} {
		status := store.StatusApproved
		if i == 3 {
			status = store.StatusPending
		}
		require.NoError(t, h.Store.SaveLeaveRequest(ctx, store.LeaveRequest{
			ID:         "away-" + id,
			EmployeeID: generic.EmployeeID(id),
			LeaveType:  leave.LeaveAnnual,
			Period:     week,
			Days:       5,
			Status:     status,
		}))
	}

	// WHEN: Alice reports sick today
	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "I'm sick today"})

	// THEN: Only approved overlapping leave counts
	require.NotNil(t, dto.Factors)
	assert.Equal(t, 3, dto.Factors.ConflictCount)
	assert.Less(t, dto.Confidence, 100.0)
}

func TestAnalyze_PersistWritesHistoryAndMetrics(t *testing.T) {
	h, router := seeded(t)

	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "I'm sick today", Persist: true})
	require.True(t, dto.Persisted)
	analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "Vacation starting today", Persist: true})

	history, err := h.Store.LeaveHistory(context.Background(), demoEmployeeID, generic.NewTimePoint(2025, 1, 1), 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	statuses := []string{history[0].Status, history[1].Status}
	assert.ElementsMatch(t, []string{store.StatusApproved, store.StatusPending}, statuses)

	rec := doJSON(t, router, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var metrics MetricsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &metrics))
	assert.Equal(t, 2, metrics.Total)
	assert.Equal(t, 1, metrics.AutoApproved)
	assert.Equal(t, 1, metrics.EscalatedManager)
	assert.InDelta(t, 0.5, metrics.AutoApprovalRate, 0.001)
}

func TestAnalyze_NotifiesAndSurvivesNotifierFailure(t *testing.T) {
	// GIVEN: A notifier that always fails
	h, router := seeded(t)
	n := &recordingNotifier{err: errors.New("broker down")}
	h.Notifier = n

	// WHEN: An escalated request is analyzed
	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "Vacation starting today"})

	// THEN: The response is unaffected and the event carries the decision
	assert.Equal(t, "ESCALATE_TO_MANAGER", dto.Decision)
	require.Len(t, n.events, 1)
	assert.Equal(t, "ESCALATE_TO_MANAGER", n.events[0].Decision)
	assert.Equal(t, "Alice Martin", n.events[0].EmployeeName)
	assert.NotEmpty(t, n.events[0].Violations)
}

func TestAnalyze_NeedsInfoIsNotNotified(t *testing.T) {
	h, router := seeded(t)
	n := &recordingNotifier{}
	h.Notifier = n

	analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: ""})

	assert.Empty(t, n.events)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_UpdateChangesNextDecision(t *testing.T) {
	// GIVEN: Short-notice vacation escalates to the manager by default
	_, router := seeded(t)
	before := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "Vacation starting today"})
	require.Equal(t, "ESCALATE_TO_MANAGER", before.Decision)

	// WHEN: The auto-approve threshold is lowered
	rec := doJSON(t, router, http.MethodPut, "/api/config", `{"thresholds": {"auto_approve": 75, "escalate": 50}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The same request is auto-approved
	after := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "Vacation starting today"})
	assert.Equal(t, "AUTO_APPROVED", after.Decision)
	assert.Equal(t, before.Confidence, after.Confidence)
}

func TestConfig_InvalidUpdateKeepsCurrent(t *testing.T) {
	h, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPut, "/api/config", `{"thresholds": {"auto_approve": 40, "escalate": 70}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 85.0, h.Evaluator.Configs.Load().AutoApproveThreshold)

	rec = doJSON(t, router, http.MethodGet, "/api/config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"auto_approve":85`)
}

// =============================================================================
// DIRECTORY / ROSTER / CALENDAR
// =============================================================================

func TestEmployees_CreateGetAndBalances(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/employees", CreateEmployeeRequest{
		ID:       "emp-100",
		Name:     "Kai Lindqvist",
		Email:    "kai@example.com",
		Balances: map[string]float64{"annual": 12, "vacation": 12},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPut, "/api/employees/emp-100/balances", UpdateBalancesRequest{
		Balances: map[string]float64{"sick": 7.5},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/employees/emp-100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var emp EmployeeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &emp))
	assert.Equal(t, 12.0, emp.Balances["annual"])
	assert.Equal(t, 7.5, emp.Balances["sick"])

	rec = doJSON(t, router, http.MethodGet, "/api/employees/nobody", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/api/employees/nobody/balances", UpdateBalancesRequest{
		Balances: map[string]float64{"sick": 1},
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmployees_Validation(t *testing.T) {
	_, router := setupTestHandler(t)

	tests := []struct {
		name string
		body CreateEmployeeRequest
	}{
		{"missing name", CreateEmployeeRequest{ID: "emp-1"}},
		{"bad email", CreateEmployeeRequest{ID: "emp-1", Name: "A", Email: "not-an-email"}},
		{"negative balance", CreateEmployeeRequest{ID: "emp-1", Name: "A", Balances: map[string]float64{"annual": -1}}},
		{"unknown type", CreateEmployeeRequest{ID: "emp-1", Name: "A", Balances: map[string]float64{"sabbatical": 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/employees", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestTeams_AddMember(t *testing.T) {
	_, router := setupTestHandler(t)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/employees",
		CreateEmployeeRequest{ID: "emp-1", Name: "Lena"}).Code)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/teams",
		CreateTeamRequest{ID: "ops", Name: "Operations", MinRequiredCoverage: 1}).Code)

	rec := doJSON(t, router, http.MethodPost, "/api/teams/ops/members", AddMemberRequest{EmployeeID: "emp-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var members []EmployeeDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	require.Len(t, members, 1)
	assert.Equal(t, "ops", members[0].TeamID)

	rec = doJSON(t, router, http.MethodPost, "/api/teams/missing/members", AddMemberRequest{EmployeeID: "emp-1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlackouts_CreateAndBlock(t *testing.T) {
	// GIVEN: A platform-wide release freeze in April
	_, router := seeded(t)
	rec := doJSON(t, router, http.MethodPost, "/api/blackouts", CreateBlackoutRequest{
		TeamID: "platform", StartDate: "2025-04-07", EndDate: "2025-04-11", Label: "Release freeze",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN: Alice asks for a day inside it
	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Intent: &IntentOverrideDTO{
		LeaveType: "annual", StartDate: "2025-04-09", EndDate: "2025-04-09",
	}})

	// THEN: The blackout rule fails and the request is escalated, not rejected
	require.NotEmpty(t, dto.Violations)
	assert.Equal(t, string(leave.RuleBlackout), dto.Violations[0].RuleID)
	assert.NotEqual(t, "AUTO_APPROVED", dto.Decision)

	rec = doJSON(t, router, http.MethodGet, "/api/blackouts?team_id=platform", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []BlackoutDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2, "team window plus the company-wide year-end close")
}

func TestBlackouts_RejectsInvertedRange(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/blackouts", CreateBlackoutRequest{
		StartDate: "2025-04-11", EndDate: "2025-04-07", Label: "Backwards",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHolidays_CreateAndList(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/holidays", CreateHolidayRequest{Date: "2025-05-01", Name: "Labour Day", Recurring: true})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/holidays", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []HolidayDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Labour Day", list[0].Name)
	assert.True(t, list[0].Recurring)
}

func TestHealth(t *testing.T) {
	h, router := setupTestHandler(t)
	h.LLMEnabled = true

	rec := doJSON(t, router, http.MethodGet, "/api/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var dto HealthDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, "ok", dto.Status)
	assert.Equal(t, "enabled", dto.LLM)
	assert.Equal(t, 85.0, dto.Thresholds["auto_approve"])
	assert.Equal(t, 60.0, dto.Thresholds["escalate"])
}
