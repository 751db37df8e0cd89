/*
scenarios_test.go - End-to-end tests for demo scenarios

PURPOSE:
	Loads each scenario through the API and analyzes its canned text, so the
	demo always shows the decision it advertises.
*/
package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_ProduceAdvertisedDecision(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			// GIVEN: The scenario is loaded
			h, router := setupTestHandler(t)
			rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: sc.ID})
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, sc.ID, h.CurrentScenario())

			// WHEN: Its text is analyzed
			dto := analyze(t, router, sc.EmployeeID, AnalyzeRequest{Text: sc.Text})

			// THEN: The advertised decision comes back
			assert.Equal(t, sc.Expected, dto.Decision)
			assert.NotEqual(t, "REJECTED", dto.Decision)
		})
	}
}

func TestScenario_LongVacationDetails(t *testing.T) {
	_, router := seeded(t)

	dto := analyze(t, router, demoEmployeeID, AnalyzeRequest{Text: "I need 25 days vacation"})

	require.NotNil(t, dto.Leave)
	assert.Equal(t, "annual", dto.Leave.LeaveType)
	assert.Equal(t, 25, dto.Leave.Days)
	assert.Less(t, dto.Confidence, 60.0)
	rules := make([]string, 0, len(dto.Violations))
	for _, v := range dto.Violations {
		rules = append(rules, v.RuleID)
	}
	assert.Contains(t, rules, "balance")
	assert.Contains(t, rules, "max_duration")
	assert.Contains(t, dto.Rationale, "Relevant policy: ")
}

func TestLoadScenario_ResetsPreviousData(t *testing.T) {
	h, router := seeded(t)
	require.Equal(t, http.StatusCreated, doJSON(t, router, http.MethodPost, "/api/employees",
		CreateEmployeeRequest{ID: "temp", Name: "Temporary"}).Code)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "sick-today"})
	require.Equal(t, http.StatusOK, rec.Code)

	emp, err := h.Store.GetEmployee(context.Background(), "temp")
	require.NoError(t, err)
	assert.Nil(t, emp)
	all, err := h.Store.ListEmployees(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, len(platformTeam))
}

func TestLoadScenario_Unknown(t *testing.T) {
	_, router := setupTestHandler(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
