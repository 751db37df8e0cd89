package leave_test

import (
	"time"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// Wednesday 2025-03-05 is "today" in every test of this package.
var testToday = generic.NewTimePoint(2025, time.March, 5)

func fixedNow() time.Time {
	return time.Date(2025, time.March, 5, 9, 30, 0, 0, time.UTC)
}

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

func days(n int) generic.Amount {
	return generic.NewAmountFromInt(n, generic.UnitDays)
}

func testEmployee() *leave.Employee {
	return &leave.Employee{
		ID:         "emp-001",
		Name:       "Alice Martin",
		Department: "Engineering",
		Balances: map[leave.LeaveType]generic.Amount{
			leave.LeaveAnnual:    days(15),
			leave.LeaveSick:      days(10),
			leave.LeaveEmergency: days(3),
			leave.LeavePersonal:  days(2),
		},
	}
}

// ampleTeam has plenty of people present and nobody else away.
func ampleTeam() *leave.TeamState {
	return &leave.TeamState{
		TeamSize:            10,
		MinRequiredCoverage: 3,
		MaxConcurrentLeave:  3,
	}
}

func newTestEvaluator() *leave.Evaluator {
	ev := leave.NewEvaluator(leave.NewConfigStore(nil), nil)
	ev.Now = fixedNow
	ev.Composer = &leave.Composer{Source: leave.NewSeededSource(42)}
	return ev
}

func findResult(results []leave.ConstraintResult, id leave.RuleID) (leave.ConstraintResult, bool) {
	for _, r := range results {
		if r.RuleID == id {
			return r, true
		}
	}
	return leave.ConstraintResult{}, false
}
