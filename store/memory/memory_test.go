package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store"
	"github.com/warp/leave-engine/store/memory"
	"github.com/warp/leave-engine/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Repository { return memory.New() })
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := memory.New()
	require.NoError(t, m.SaveEmployee(ctx, store.EmployeeRecord{Employee: leave.Employee{
		ID:       "a",
		Name:     "Alice",
		Balances: map[leave.LeaveType]generic.Amount{leave.LeaveAnnual: generic.NewAmountFromInt(10, generic.UnitDays)},
	}}))

	// WHEN: caller mutates the returned record
	emp, err := m.GetEmployee(ctx, "a")
	require.NoError(t, err)
	emp.Balances[leave.LeaveAnnual] = generic.NewAmountFromInt(0, generic.UnitDays)

	// THEN: stored balance is unchanged
	again, err := m.GetEmployee(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.Balances[leave.LeaveAnnual].Float())
}
