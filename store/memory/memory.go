// Package memory provides an in-memory store.Repository for tests, demos and
// the leavectl CLI.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	employees map[generic.EmployeeID]store.EmployeeRecord
	teams     map[generic.TeamID]store.Team
	blackouts map[string]store.Blackout
	holidays  map[string]generic.Holiday
	requests  []store.LeaveRequest
	decisions []store.DecisionEntry
	policies  map[string]store.PolicySnippet
}

var _ store.Repository = (*Memory)(nil)

func New() *Memory {
	m := &Memory{}
	m.resetLocked()
	return m
}

func (m *Memory) resetLocked() {
	m.employees = make(map[generic.EmployeeID]store.EmployeeRecord)
	m.teams = make(map[generic.TeamID]store.Team)
	m.blackouts = make(map[string]store.Blackout)
	m.holidays = make(map[string]generic.Holiday)
	m.requests = nil
	m.decisions = nil
	m.policies = make(map[string]store.PolicySnippet)
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Reset(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetLocked()
	return nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (m *Memory) SaveEmployee(_ context.Context, emp store.EmployeeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.employees[emp.ID]; ok && emp.CreatedAt.IsZero() {
		emp.CreatedAt = existing.CreatedAt
	}
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = time.Now().UTC()
	}
	m.employees[emp.ID] = copyEmployee(emp)
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id generic.EmployeeID) (*store.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	emp, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	out := copyEmployee(emp)
	return &out, nil
}

func (m *Memory) ListEmployees(context.Context) ([]store.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterEmployees(func(store.EmployeeRecord) bool { return true }), nil
}

func (m *Memory) SetBalance(_ context.Context, id generic.EmployeeID, lt leave.LeaveType, amount generic.Amount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	emp, ok := m.employees[id]
	if !ok {
		return fmt.Errorf("employee %s: %w", id, generic.ErrNotFound)
	}
	if emp.Balances == nil {
		emp.Balances = make(map[leave.LeaveType]generic.Amount)
	}
	emp.Balances[lt] = amount
	m.employees[id] = emp
	return nil
}

func (m *Memory) filterEmployees(keep func(store.EmployeeRecord) bool) []store.EmployeeRecord {
	var out []store.EmployeeRecord
	for _, emp := range m.employees {
		if keep(emp) {
			out = append(out, copyEmployee(emp))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func copyEmployee(emp store.EmployeeRecord) store.EmployeeRecord {
	balances := make(map[leave.LeaveType]generic.Amount, len(emp.Balances))
	for lt, a := range emp.Balances {
		balances[lt] = a
	}
	emp.Balances = balances
	return emp
}

// =============================================================================
// ROSTER
// =============================================================================

func (m *Memory) SaveTeam(_ context.Context, team store.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[team.ID] = team
	return nil
}

func (m *Memory) GetTeam(_ context.Context, id generic.TeamID) (*store.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.teams[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *Memory) AddTeamMember(_ context.Context, teamID generic.TeamID, employeeID generic.EmployeeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	emp, ok := m.employees[employeeID]
	if !ok {
		return fmt.Errorf("employee %s: %w", employeeID, generic.ErrNotFound)
	}
	emp.TeamID = teamID
	m.employees[employeeID] = emp
	return nil
}

func (m *Memory) TeamMembers(_ context.Context, teamID generic.TeamID) ([]store.EmployeeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.filterEmployees(func(e store.EmployeeRecord) bool { return e.TeamID == teamID }), nil
}

func (m *Memory) MembersOnLeave(_ context.Context, teamID generic.TeamID, exclude generic.EmployeeID, p generic.Period) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[generic.EmployeeID]bool)
	var names []string
	for _, r := range m.requests {
		if r.EmployeeID == exclude || r.Status != store.StatusApproved || !r.Period.Overlaps(p) {
			continue
		}
		emp, ok := m.employees[r.EmployeeID]
		if !ok || emp.TeamID != teamID || seen[emp.ID] {
			continue
		}
		seen[emp.ID] = true
		names = append(names, emp.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) SaveBlackout(_ context.Context, b store.Blackout) error {
	if err := b.Period.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blackouts[b.ID] = b
	return nil
}

func (m *Memory) ListBlackouts(_ context.Context, teamID generic.TeamID) ([]store.Blackout, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.Blackout
	for _, b := range m.blackouts {
		if teamID == "" || b.TeamID == "" || b.TeamID == teamID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Start.Before(out[j].Period.Start) })
	return out, nil
}

// =============================================================================
// CALENDAR
// =============================================================================

func (m *Memory) SaveHoliday(_ context.Context, h generic.Holiday) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays[h.Date.String()+"|"+h.Name] = h
	return nil
}

func (m *Memory) ListHolidays(context.Context) ([]generic.Holiday, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]generic.Holiday, 0, len(m.holidays))
	for _, h := range m.holidays {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// =============================================================================
// RECORDS
// =============================================================================

func (m *Memory) SaveLeaveRequest(_ context.Context, r store.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.employees[r.EmployeeID]; !ok {
		return fmt.Errorf("employee %s: %w", r.EmployeeID, generic.ErrNotFound)
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	m.requests = append(m.requests, r)
	return nil
}

func (m *Memory) LeaveHistory(_ context.Context, employeeID generic.EmployeeID, since generic.TimePoint, limit int) ([]store.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []store.LeaveRequest
	for _, r := range m.requests {
		if r.EmployeeID == employeeID && r.Period.Start.AfterOrEqual(since) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Period.Start.After(out[j].Period.Start) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// =============================================================================
// DECISION LOG
// =============================================================================

func (m *Memory) SaveDecision(_ context.Context, d store.DecisionEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	m.decisions = append(m.decisions, d)
	return nil
}

func (m *Memory) DecisionStats(_ context.Context, since time.Time) (store.DecisionStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var stats store.DecisionStats
	var confidenceSum float64
	for _, d := range m.decisions {
		if d.CreatedAt.Before(since) {
			continue
		}
		stats.Total++
		switch d.Decision {
		case leave.DecisionAutoApproved:
			stats.AutoApproved++
		case leave.DecisionEscalateToManager:
			stats.EscalatedManager++
		case leave.DecisionEscalateToHR:
			stats.EscalatedHR++
		case leave.DecisionNeedsInfo:
			stats.NeedsInfo++
		case leave.DecisionError:
			stats.Errors++
		}
		if d.Decision.IsAdjudicated() {
			confidenceSum += d.Confidence
		}
	}
	if n := stats.AutoApproved + stats.EscalatedManager + stats.EscalatedHR; n > 0 {
		stats.AverageConfidence = confidenceSum / float64(n)
	}
	return stats, nil
}

// =============================================================================
// POLICY LIBRARY
// =============================================================================

func (m *Memory) SavePolicySnippet(_ context.Context, p store.PolicySnippet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.policies[p.ID] = p
	return nil
}

// PolicyText returns the body of the snippet with the lowest ID for lt.
func (m *Memory) PolicyText(_ context.Context, lt leave.LeaveType) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *store.PolicySnippet
	for id := range m.policies {
		p := m.policies[id]
		if p.LeaveType != lt {
			continue
		}
		if best == nil || p.ID < best.ID {
			best = &p
		}
	}
	if best == nil {
		return "", nil
	}
	return best.Body, nil
}
