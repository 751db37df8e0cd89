/*
Package sqlite provides a SQLite-backed implementation of store.Repository.

PURPOSE:
  Persists everything the leave service reads before an evaluation (employees,
  balances, teams, blackout windows, holidays, history, policy snippets) and
  everything it writes after one (leave requests, the decision log). In
  production the same SQL runs on PostgreSQL with minor dialect changes.

KEY TABLES:
  employees:        Directory records (team membership via team_id)
  leave_balances:   Remaining days per employee and leave type (decimal text)
  teams:            Coverage minimum and concurrency cap per team
  blackout_windows: Team or company-wide (team_id = '') freeze periods
  holidays:         Company holidays, optionally recurring
  leave_requests:   Adjudicated requests, approved or pending
  decision_log:     One row per evaluation, feeds /api/metrics
  policy_snippets:  Policy text quoted in rationale messages

DATES:
  Calendar dates are stored as YYYY-MM-DD text so range checks are plain
  string comparisons. Timestamps are RFC3339 in UTC.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  repo, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool with versioned migrations.

SEE ALSO:
  - store/store.go: Interface definitions
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/store"
)

// Store implements store.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS teams (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		min_required_coverage INTEGER NOT NULL DEFAULT 0,
		max_concurrent_leave INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		department TEXT NOT NULL DEFAULT '',
		team_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_team
		ON employees(team_id);

	CREATE TABLE IF NOT EXISTS leave_balances (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		leave_type TEXT NOT NULL,
		amount TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (employee_id, leave_type)
	);

	CREATE TABLE IF NOT EXISTS blackout_windows (
		id TEXT PRIMARY KEY,
		team_id TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		label TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_blackouts_team
		ON blackout_windows(team_id, start_date);

	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL,
		name TEXT NOT NULL,
		recurring BOOLEAN DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_holidays_unique
		ON holidays(date, name);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		evaluation_id TEXT NOT NULL DEFAULT '',
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		days INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL
	);

	-- History lookups (pattern detection) and overlap checks (team roster)
	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee_start
		ON leave_requests(employee_id, start_date DESC);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status_dates
		ON leave_requests(status, start_date, end_date);

	CREATE TABLE IF NOT EXISTS decision_log (
		id TEXT PRIMARY KEY,
		evaluation_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type TEXT NOT NULL DEFAULT '',
		decision TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		days INTEGER NOT NULL DEFAULT 0,
		tone TEXT NOT NULL DEFAULT '',
		urgency TEXT NOT NULL DEFAULT '',
		team_capacity REAL NOT NULL DEFAULT 0,
		timing_ms INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_decision_log_created
		ON decision_log(created_at);

	CREATE TABLE IF NOT EXISTS policy_snippets (
		id TEXT PRIMARY KEY,
		leave_type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_policy_snippets_type
		ON policy_snippets(leave_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DIRECTORY (employees + balances)
// =============================================================================

// SaveEmployee upserts the employee and replaces its balances.
func (s *Store) SaveEmployee(ctx context.Context, emp store.EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, department, team_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			department = excluded.department,
			team_id = excluded.team_id
	`, emp.ID, emp.Name, emp.Email, emp.Department, emp.TeamID, now())
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM leave_balances WHERE employee_id = ?", emp.ID); err != nil {
		return err
	}
	for lt, amount := range emp.Balances {
		if err := upsertBalance(ctx, tx, emp.ID, lt, amount); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetEmployee retrieves an employee with balances. Returns (nil, nil) if missing.
func (s *Store) GetEmployee(ctx context.Context, id generic.EmployeeID) (*store.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var emp store.EmployeeRecord
	var createdAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, department, team_id, created_at FROM employees WHERE id = ?",
		id,
	).Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Department, &emp.TeamID, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	balances, err := s.loadBalances(ctx, "WHERE employee_id = ?", id)
	if err != nil {
		return nil, err
	}
	emp.Balances = balances[emp.ID]
	if emp.Balances == nil {
		emp.Balances = map[leave.LeaveType]generic.Amount{}
	}
	return &emp, nil
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]store.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx, "SELECT id, name, email, department, team_id, created_at FROM employees ORDER BY name")
}

// SetBalance upserts one balance.
func (s *Store) SetBalance(ctx context.Context, id generic.EmployeeID, lt leave.LeaveType, amount generic.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees WHERE id = ?", id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("employee %s: %w", id, generic.ErrNotFound)
	}
	return upsertBalance(ctx, s.db, id, lt, amount)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertBalance(ctx context.Context, db execer, id generic.EmployeeID, lt leave.LeaveType, amount generic.Amount) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO leave_balances (employee_id, leave_type, amount, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee_id, leave_type) DO UPDATE SET
			amount = excluded.amount,
			updated_at = excluded.updated_at
	`, id, lt, amount.Value.String(), now())
	if err != nil {
		return fmt.Errorf("failed to save balance: %w", err)
	}
	return nil
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...any) ([]store.EmployeeRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var employees []store.EmployeeRecord
	for rows.Next() {
		var emp store.EmployeeRecord
		var createdAt string
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Department, &emp.TeamID, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		emp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	balances, err := s.loadBalances(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range employees {
		employees[i].Balances = balances[employees[i].ID]
		if employees[i].Balances == nil {
			employees[i].Balances = map[leave.LeaveType]generic.Amount{}
		}
	}
	return employees, nil
}

func (s *Store) loadBalances(ctx context.Context, where string, args ...any) (map[generic.EmployeeID]map[leave.LeaveType]generic.Amount, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT employee_id, leave_type, amount FROM leave_balances "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[generic.EmployeeID]map[leave.LeaveType]generic.Amount)
	for rows.Next() {
		var id generic.EmployeeID
		var lt leave.LeaveType
		var value string
		if err := rows.Scan(&id, &lt, &value); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[leave.LeaveType]generic.Amount)
		}
		out[id][lt] = parseAmount(value)
	}
	return out, rows.Err()
}

// =============================================================================
// ROSTER (teams, membership, blackouts)
// =============================================================================

func (s *Store) SaveTeam(ctx context.Context, team store.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, min_required_coverage, max_concurrent_leave, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			min_required_coverage = excluded.min_required_coverage,
			max_concurrent_leave = excluded.max_concurrent_leave
	`, team.ID, team.Name, team.MinRequiredCoverage, team.MaxConcurrentLeave, now())
	return err
}

// GetTeam returns (nil, nil) if the team doesn't exist.
func (s *Store) GetTeam(ctx context.Context, id generic.TeamID) (*store.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t store.Team
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, min_required_coverage, max_concurrent_leave FROM teams WHERE id = ?", id,
	).Scan(&t.ID, &t.Name, &t.MinRequiredCoverage, &t.MaxConcurrentLeave)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) AddTeamMember(ctx context.Context, teamID generic.TeamID, employeeID generic.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "UPDATE employees SET team_id = ? WHERE id = ?", teamID, employeeID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("employee %s: %w", employeeID, generic.ErrNotFound)
	}
	return nil
}

func (s *Store) TeamMembers(ctx context.Context, teamID generic.TeamID) ([]store.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryEmployees(ctx,
		"SELECT id, name, email, department, team_id, created_at FROM employees WHERE team_id = ? ORDER BY name",
		teamID,
	)
}

func (s *Store) MembersOnLeave(ctx context.Context, teamID generic.TeamID, exclude generic.EmployeeID, p generic.Period) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT e.id, e.name
		FROM leave_requests r
		JOIN employees e ON e.id = r.employee_id
		WHERE e.team_id = ?
		  AND r.employee_id != ?
		  AND r.status = ?
		  AND r.start_date <= ?
		  AND r.end_date >= ?
		ORDER BY e.name, e.id
	`, teamID, exclude, store.StatusApproved, p.End.String(), p.Start.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) SaveBlackout(ctx context.Context, b store.Blackout) error {
	if err := b.Period.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blackout_windows (id, team_id, start_date, end_date, label)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			team_id = excluded.team_id,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			label = excluded.label
	`, b.ID, b.TeamID, b.Period.Start.String(), b.Period.End.String(), b.Label)
	return err
}

func (s *Store) ListBlackouts(ctx context.Context, teamID generic.TeamID) ([]store.Blackout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := "SELECT id, team_id, start_date, end_date, label FROM blackout_windows"
	var args []any
	if teamID != "" {
		query += " WHERE team_id = ? OR team_id = ''"
		args = append(args, teamID)
	}
	query += " ORDER BY start_date"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Blackout
	for rows.Next() {
		var b store.Blackout
		var start, end string
		if err := rows.Scan(&b.ID, &b.TeamID, &start, &end, &b.Label); err != nil {
			return nil, err
		}
		b.Period = generic.Period{Start: parseDate(start), End: parseDate(end)}
		out = append(out, b)
	}
	return out, rows.Err()
}

// =============================================================================
// HOLIDAY CALENDAR
// =============================================================================

func (s *Store) SaveHoliday(ctx context.Context, h generic.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holidays (id, date, name, recurring, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date, name) DO UPDATE SET
			recurring = excluded.recurring
	`, h.ID, h.Date.String(), h.Name, h.Recurring, now())
	return err
}

func (s *Store) ListHolidays(ctx context.Context) ([]generic.Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, date, name, recurring FROM holidays ORDER BY date ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []generic.Holiday
	for rows.Next() {
		var h generic.Holiday
		var dateStr string
		if err := rows.Scan(&h.ID, &dateStr, &h.Name, &h.Recurring); err != nil {
			return nil, err
		}
		h.Date = parseDate(dateStr)
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

func (s *Store) SaveLeaveRequest(ctx context.Context, r store.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
		(id, employee_id, evaluation_id, leave_type, start_date, end_date, days, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.EmployeeID, r.EvaluationID, r.LeaveType,
		r.Period.Start.String(), r.Period.End.String(),
		r.Days, r.Reason, r.Status, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save leave request: %w", err)
	}
	return nil
}

func (s *Store) LeaveHistory(ctx context.Context, employeeID generic.EmployeeID, since generic.TimePoint, limit int) ([]store.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, evaluation_id, leave_type, start_date, end_date, days, reason, status, created_at
		FROM leave_requests
		WHERE employee_id = ? AND start_date >= ?
		ORDER BY start_date DESC, created_at DESC
	`
	args := []any{employeeID, since.String()}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.LeaveRequest
	for rows.Next() {
		var r store.LeaveRequest
		var start, end, createdAt string
		if err := rows.Scan(&r.ID, &r.EmployeeID, &r.EvaluationID, &r.LeaveType,
			&start, &end, &r.Days, &r.Reason, &r.Status, &createdAt); err != nil {
			return nil, err
		}
		r.Period = generic.Period{Start: parseDate(start), End: parseDate(end)}
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// DECISION LOG
// =============================================================================

func (s *Store) SaveDecision(ctx context.Context, d store.DecisionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO decision_log
		(id, evaluation_id, employee_id, leave_type, decision, confidence, days, tone, urgency, team_capacity, timing_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.EvaluationID, d.EmployeeID, d.LeaveType, d.Decision, d.Confidence,
		d.Days, d.Tone, d.Urgency, d.TeamCapacity, d.TimingMs, formatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// DecisionStats aggregates decisions logged at or after since. The average
// confidence covers adjudicated decisions only.
func (s *Store) DecisionStats(ctx context.Context, since time.Time) (store.DecisionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT decision, COUNT(*), COALESCE(SUM(confidence), 0)
		FROM decision_log
		WHERE created_at >= ?
		GROUP BY decision
	`, formatTime(since))
	if err != nil {
		return store.DecisionStats{}, err
	}
	defer rows.Close()

	var stats store.DecisionStats
	var confidenceSum float64
	for rows.Next() {
		var decision leave.Decision
		var count int
		var sum float64
		if err := rows.Scan(&decision, &count, &sum); err != nil {
			return store.DecisionStats{}, err
		}
		stats.Total += count
		switch decision {
		case leave.DecisionAutoApproved:
			stats.AutoApproved = count
		case leave.DecisionEscalateToManager:
			stats.EscalatedManager = count
		case leave.DecisionEscalateToHR:
			stats.EscalatedHR = count
		case leave.DecisionNeedsInfo:
			stats.NeedsInfo = count
		case leave.DecisionError:
			stats.Errors = count
		}
		if decision.IsAdjudicated() {
			confidenceSum += sum
		}
	}
	if err := rows.Err(); err != nil {
		return store.DecisionStats{}, err
	}
	if n := stats.AutoApproved + stats.EscalatedManager + stats.EscalatedHR; n > 0 {
		stats.AverageConfidence = confidenceSum / float64(n)
	}
	return stats, nil
}

// =============================================================================
// POLICY LIBRARY
// =============================================================================

func (s *Store) SavePolicySnippet(ctx context.Context, p store.PolicySnippet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO policy_snippets (id, leave_type, title, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			leave_type = excluded.leave_type,
			title = excluded.title,
			body = excluded.body
	`, p.ID, p.LeaveType, p.Title, p.Body)
	return err
}

func (s *Store) PolicyText(ctx context.Context, lt leave.LeaveType) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err := s.db.QueryRowContext(ctx,
		"SELECT body FROM policy_snippets WHERE leave_type = ? ORDER BY id LIMIT 1", lt,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return body, err
}

// =============================================================================
// ADMIN
// =============================================================================

// Reset clears all data (for demos and tests).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"decision_log", "leave_requests", "leave_balances", "employees",
		"teams", "blackout_windows", "holidays", "policy_snippets",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// Helper functions

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return now()
	}
	return t.UTC().Format(time.RFC3339)
}

func parseDate(s string) generic.TimePoint {
	tp, err := generic.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}

func parseAmount(value string) generic.Amount {
	a, err := generic.ParseAmount(value, generic.UnitDays)
	if err != nil {
		return generic.NewAmountFromInt(0, generic.UnitDays)
	}
	return a
}
