// Package storetest holds the behaviour every store.Repository must share.
// Implementations call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store"
)

func date(s string) generic.TimePoint {
	tp, err := generic.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return tp
}

func period(start, end string) generic.Period {
	return generic.Period{Start: date(start), End: date(end)}
}

func days(n int) generic.Amount { return generic.NewAmountFromInt(n, generic.UnitDays) }

func employee(id, name string, team generic.TeamID) store.EmployeeRecord {
	return store.EmployeeRecord{
		Employee: leave.Employee{
			ID:   generic.EmployeeID(id),
			Name: name,
			Balances: map[leave.LeaveType]generic.Amount{
				leave.LeaveAnnual: days(15),
			},
		},
		TeamID: team,
	}
}

// Run executes the shared suite. newRepo must return an empty repository.
func Run(t *testing.T, newRepo func(t *testing.T) store.Repository) {
	ctx := context.Background()

	t.Run("missing employee is nil, nil", func(t *testing.T) {
		repo := newRepo(t)

		emp, err := repo.GetEmployee(ctx, "nobody")

		require.NoError(t, err)
		assert.Nil(t, emp)
	})

	t.Run("employee round trip keeps balances", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveEmployee(ctx, employee("emp-1", "Alice", "eng")))

		require.NoError(t, repo.SetBalance(ctx, "emp-1", leave.LeaveSick, generic.NewAmount(4.5, generic.UnitDays)))

		emp, err := repo.GetEmployee(ctx, "emp-1")
		require.NoError(t, err)
		require.NotNil(t, emp)
		assert.Equal(t, "Alice", emp.Name)
		assert.Equal(t, generic.TeamID("eng"), emp.TeamID)
		assert.True(t, emp.Balances[leave.LeaveAnnual].Equal(days(15)))
		assert.Equal(t, 4.5, emp.Balances[leave.LeaveSick].Float())
	})

	t.Run("set balance on unknown employee is not found", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.SetBalance(ctx, "ghost", leave.LeaveAnnual, days(1))

		assert.True(t, generic.IsNotFound(err))
	})

	t.Run("members on leave counts people, not names or requests", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveTeam(ctx, store.Team{ID: "eng", Name: "Engineering"}))
		for _, e := range []store.EmployeeRecord{
			employee("a", "Alice", "eng"),
			employee("s1", "Sam Lee", "eng"),
			employee("s2", "Sam Lee", "eng"),
		} {
			require.NoError(t, repo.SaveEmployee(ctx, e))
		}
		for _, r := range []store.LeaveRequest{
			{ID: "r1", EmployeeID: "s1", LeaveType: leave.LeaveAnnual, Period: period("2025-03-10", "2025-03-12"), Days: 3, Status: store.StatusApproved},
			{ID: "r2", EmployeeID: "s1", LeaveType: leave.LeaveSick, Period: period("2025-03-13", "2025-03-13"), Days: 1, Status: store.StatusApproved},
			{ID: "r3", EmployeeID: "s2", LeaveType: leave.LeaveAnnual, Period: period("2025-03-12", "2025-03-14"), Days: 3, Status: store.StatusApproved},
		} {
			require.NoError(t, repo.SaveLeaveRequest(ctx, r))
		}

		names, err := repo.MembersOnLeave(ctx, "eng", "a", period("2025-03-12", "2025-03-13"))

		require.NoError(t, err)
		assert.Equal(t, []string{"Sam Lee", "Sam Lee"}, names)
	})

	t.Run("members on leave excludes requester, pending and non-overlapping", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveTeam(ctx, store.Team{ID: "eng", Name: "Engineering", MinRequiredCoverage: 2}))
		for _, e := range []store.EmployeeRecord{
			employee("a", "Alice", "eng"),
			employee("b", "Bob", "eng"),
			employee("c", "Carol", "eng"),
			employee("d", "Dan", "eng"),
			employee("x", "Xavier", "ops"),
		} {
			require.NoError(t, repo.SaveEmployee(ctx, e))
		}
		reqs := []store.LeaveRequest{
			{ID: "r1", EmployeeID: "a", LeaveType: leave.LeaveAnnual, Period: period("2025-03-10", "2025-03-14"), Days: 5, Status: store.StatusApproved},
			{ID: "r2", EmployeeID: "b", LeaveType: leave.LeaveAnnual, Period: period("2025-03-12", "2025-03-12"), Days: 1, Status: store.StatusApproved},
			{ID: "r3", EmployeeID: "c", LeaveType: leave.LeaveAnnual, Period: period("2025-03-11", "2025-03-11"), Days: 1, Status: store.StatusPending},
			{ID: "r4", EmployeeID: "d", LeaveType: leave.LeaveAnnual, Period: period("2025-04-01", "2025-04-02"), Days: 2, Status: store.StatusApproved},
			{ID: "r5", EmployeeID: "x", LeaveType: leave.LeaveAnnual, Period: period("2025-03-12", "2025-03-12"), Days: 1, Status: store.StatusApproved},
		}
		for _, r := range reqs {
			require.NoError(t, repo.SaveLeaveRequest(ctx, r))
		}

		names, err := repo.MembersOnLeave(ctx, "eng", "a", period("2025-03-12", "2025-03-13"))

		require.NoError(t, err)
		assert.Equal(t, []string{"Bob"}, names)

		members, err := repo.TeamMembers(ctx, "eng")
		require.NoError(t, err)
		assert.Len(t, members, 4)
	})

	t.Run("blackouts include company-wide windows", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveBlackout(ctx, store.Blackout{ID: "b1", TeamID: "eng",
			BlackoutWindow: leave.BlackoutWindow{Period: period("2025-06-01", "2025-06-07"), Label: "Release freeze"}}))
		require.NoError(t, repo.SaveBlackout(ctx, store.Blackout{ID: "b2",
			BlackoutWindow: leave.BlackoutWindow{Period: period("2025-12-20", "2025-12-31"), Label: "Year end close"}}))
		require.NoError(t, repo.SaveBlackout(ctx, store.Blackout{ID: "b3", TeamID: "ops",
			BlackoutWindow: leave.BlackoutWindow{Period: period("2025-05-01", "2025-05-02"), Label: "Migration"}}))

		got, err := repo.ListBlackouts(ctx, "eng")

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Release freeze", got[0].Label)
		assert.Equal(t, "Year end close", got[1].Label)

		all, err := repo.ListBlackouts(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("inverted blackout is rejected", func(t *testing.T) {
		repo := newRepo(t)

		err := repo.SaveBlackout(ctx, store.Blackout{ID: "bad",
			BlackoutWindow: leave.BlackoutWindow{Period: period("2025-06-07", "2025-06-01"), Label: "Backwards"}})

		assert.ErrorIs(t, err, generic.ErrInvalidPeriod)
	})

	t.Run("holidays are upserted by date and name", func(t *testing.T) {
		repo := newRepo(t)
		h := generic.Holiday{ID: "h1", Date: date("2025-12-25"), Name: "Christmas Day"}
		require.NoError(t, repo.SaveHoliday(ctx, h))
		again := generic.Holiday{ID: "h1-again", Date: h.Date, Name: h.Name, Recurring: true}
		require.NoError(t, repo.SaveHoliday(ctx, again))
		require.NoError(t, repo.SaveHoliday(ctx, generic.Holiday{ID: "h2", Date: date("2025-01-01"), Name: "New Year"}))

		got, err := repo.ListHolidays(ctx)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "New Year", got[0].Name)
		assert.True(t, got[1].Recurring)
	})

	t.Run("history is newest first, windowed and limited", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveEmployee(ctx, employee("a", "Alice", "eng")))
		for i, start := range []string{"2024-10-01", "2025-01-06", "2025-02-03", "2025-02-17"} {
			require.NoError(t, repo.SaveLeaveRequest(ctx, store.LeaveRequest{
				ID:         "h" + string(rune('0'+i)),
				EmployeeID: "a",
				LeaveType:  leave.LeaveSick,
				Period:     period(start, start),
				Days:       1,
				Status:     store.StatusApproved,
			}))
		}

		got, err := repo.LeaveHistory(ctx, "a", date("2025-01-01"), 2)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2025-02-17", got[0].Period.Start.String())
		assert.Equal(t, "2025-02-03", got[1].Period.Start.String())

		history := store.ToHistory(got)
		assert.Equal(t, leave.LeaveSick, history[0].LeaveType)
	})

	t.Run("decision stats count each outcome", func(t *testing.T) {
		repo := newRepo(t)
		since := time.Now().Add(-time.Hour)
		entries := []struct {
			decision   leave.Decision
			confidence float64
		}{
			{leave.DecisionAutoApproved, 100},
			{leave.DecisionAutoApproved, 90},
			{leave.DecisionEscalateToManager, 80},
			{leave.DecisionEscalateToHR, 50},
			{leave.DecisionNeedsInfo, 0},
		}
		for i, e := range entries {
			require.NoError(t, repo.SaveDecision(ctx, store.DecisionEntry{
				ID:           "d" + string(rune('0'+i)),
				EvaluationID: "e" + string(rune('0'+i)),
				EmployeeID:   "a",
				Decision:     e.decision,
				Confidence:   e.confidence,
				CreatedAt:    time.Now(),
			}))
		}

		stats, err := repo.DecisionStats(ctx, since)

		require.NoError(t, err)
		assert.Equal(t, 5, stats.Total)
		assert.Equal(t, 2, stats.AutoApproved)
		assert.Equal(t, 1, stats.EscalatedManager)
		assert.Equal(t, 1, stats.EscalatedHR)
		assert.Equal(t, 1, stats.NeedsInfo)
		assert.InDelta(t, 80.0, stats.AverageConfidence, 0.001)
		assert.InDelta(t, 0.5, stats.AutoApprovalRate(), 0.001)
	})

	t.Run("policy text by leave type", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SavePolicySnippet(ctx, store.PolicySnippet{
			ID: "p-annual", LeaveType: leave.LeaveAnnual, Title: "Annual leave", Body: "Give at least a week of notice.",
		}))

		text, err := repo.PolicyText(ctx, leave.LeaveAnnual)
		require.NoError(t, err)
		assert.Equal(t, "Give at least a week of notice.", text)

		text, err = repo.PolicyText(ctx, leave.LeaveStudy)
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("reset clears everything", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.SaveEmployee(ctx, employee("a", "Alice", "eng")))
		require.NoError(t, repo.SaveTeam(ctx, store.Team{ID: "eng", Name: "Engineering"}))

		require.NoError(t, repo.Reset(ctx))

		emps, err := repo.ListEmployees(ctx)
		require.NoError(t, err)
		assert.Empty(t, emps)
		team, err := repo.GetTeam(ctx, "eng")
		require.NoError(t, err)
		assert.Nil(t, team)
		assert.NoError(t, repo.Ping(ctx))
	})
}
