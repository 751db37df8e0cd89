/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides a pre-built organisation (one team, balances, holidays, policy
	snippets) plus canned request texts that demonstrate each decision path.

AVAILABLE SCENARIOS:

	sick-today:        "I'm sick today"              -> AUTO_APPROVED
	long-vacation:     "I need 25 days vacation"     -> ESCALATE_TO_HR
	planned-vacation:  "Leave on January 15th"       -> AUTO_APPROVED
	short-notice:      "Vacation starting today"     -> ESCALATE_TO_MANAGER

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create the Platform team and its ten members
 3. Set balances for the demo employee (emp-001)
 4. Add recurring holidays, a blackout window and policy snippets
 5. The client posts the scenario text to the analyze endpoint

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "long-vacation"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Analyze endpoint
*/
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

const demoEmployeeID = "emp-001"

var scenarios = []ScenarioDTO{
	{
		ID:          "sick-today",
		Name:        "Sick Today",
		Description: "Same-day sick leave with ample balance and coverage",
		Text:        "I'm sick today",
		EmployeeID:  demoEmployeeID,
		Expected:    string(leave.DecisionAutoApproved),
	},
	{
		ID:          "long-vacation",
		Name:        "Long Vacation",
		Description: "25 days of annual leave against a 15 day balance and a 20 day cap",
		Text:        "I need 25 days vacation",
		EmployeeID:  demoEmployeeID,
		Expected:    string(leave.DecisionEscalateToHR),
	},
	{
		ID:          "planned-vacation",
		Name:        "Planned Vacation",
		Description: "Single annual leave day requested well ahead",
		Text:        "Leave on January 15th",
		EmployeeID:  demoEmployeeID,
		Expected:    string(leave.DecisionAutoApproved),
	},
	{
		ID:          "short-notice",
		Name:        "Short Notice",
		Description: "Annual leave starting today, below the 7 day notice period",
		Text:        "Vacation starting today",
		EmployeeID:  demoEmployeeID,
		Expected:    string(leave.DecisionEscalateToManager),
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// CurrentScenario returns the ID of the last loaded scenario, if any.
func (h *Handler) CurrentScenario() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.currentScenario
}

// LoadScenario resets the store and seeds the demo organisation.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	scenario, ok := findScenario(req.ScenarioID)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := SeedDemo(ctx, h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = scenario.ID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, scenario)
}

func findScenario(id string) (ScenarioDTO, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return ScenarioDTO{}, false
}

// =============================================================================
// SEED DATA
// =============================================================================

var platformTeam = []struct {
	id, name string
}{
	{demoEmployeeID, "Alice Martin"},
	{"emp-002", "Bruno Costa"},
	{"emp-003", "Chloe Dubois"},
	{"emp-004", "Dmitri Ivanov"},
	{"emp-005", "Emma Schulz"},
	{"emp-006", "Farid Haddad"},
	{"emp-007", "Grace Okafor"},
	{"emp-008", "Hiro Tanaka"},
	{"emp-009", "Ines Moreau"},
	{"emp-010", "Jonas Berg"},
}

func days(n int) generic.Amount { return generic.NewAmountFromInt(n, generic.UnitDays) }

// SeedDemo writes the demo organisation into repo. It does not reset first.
func SeedDemo(ctx context.Context, repo store.Repository) error {
	if err := repo.SaveTeam(ctx, store.Team{
		ID:                  "platform",
		Name:                "Platform",
		MinRequiredCoverage: 3,
		MaxConcurrentLeave:  3,
	}); err != nil {
		return err
	}

	for _, m := range platformTeam {
		emp := store.EmployeeRecord{
			Employee: leave.Employee{
				ID:         generic.EmployeeID(m.id),
				Name:       m.name,
				Department: "Engineering",
				Balances: map[leave.LeaveType]generic.Amount{
					leave.LeaveAnnual: days(20),
					leave.LeaveSick:   days(10),
				},
			},
			TeamID: "platform",
		}
		if m.id == demoEmployeeID {
			emp.Email = "alice.martin@example.com"
			emp.Balances = map[leave.LeaveType]generic.Amount{
				leave.LeaveAnnual:    days(15),
				leave.LeaveSick:      days(10),
				leave.LeaveEmergency: days(3),
				leave.LeavePersonal:  days(2),
			}
		}
		if err := repo.SaveEmployee(ctx, emp); err != nil {
			return fmt.Errorf("seed employee %s: %w", m.id, err)
		}
	}

	for _, hol := range []generic.Holiday{
		{ID: "hol-new-year", Date: generic.NewTimePoint(2025, 1, 1), Name: "New Year's Day", Recurring: true},
		{ID: "hol-christmas", Date: generic.NewTimePoint(2025, 12, 25), Name: "Christmas Day", Recurring: true},
	} {
		if err := repo.SaveHoliday(ctx, hol); err != nil {
			return fmt.Errorf("seed holiday %s: %w", hol.Name, err)
		}
	}

	if err := repo.SaveBlackout(ctx, store.Blackout{
		ID: "blk-year-end",
		BlackoutWindow: leave.BlackoutWindow{
			Period: generic.Period{Start: generic.NewTimePoint(2025, 12, 22), End: generic.NewTimePoint(2025, 12, 31)},
			Label:  "Year-end close",
		},
	}); err != nil {
		return err
	}

	for _, p := range []store.PolicySnippet{
		{ID: "pol-annual", LeaveType: leave.LeaveAnnual, Title: "Annual leave",
			Body: "Annual leave should be requested at least seven days in advance and may not exceed twenty consecutive working days without HR approval."},
		{ID: "pol-sick", LeaveType: leave.LeaveSick, Title: "Sick leave",
			Body: "Notify your manager as early as possible on the first day of absence. A medical certificate is required from the fourth consecutive day."},
	} {
		if err := repo.SavePolicySnippet(ctx, p); err != nil {
			return fmt.Errorf("seed policy %s: %w", p.ID, err)
		}
	}
	return nil
}
