package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/leave"
)

const aliceFixture = `
employee:
  id: emp-001
  name: Alice Martin
  department: Engineering
  balances:
    annual: 15
    sick: 10
team:
  size: 10
  min_required_coverage: 3
  max_concurrent_leave: 3
  blackouts:
    - start: 2025-12-22
      end: 2025-12-31
      label: Year-end close
history:
  - leave_type: sick
    start: 2025-01-13
    reason: flu
    status: approved
holidays:
  - date: 2025-12-25
    name: Christmas Day
    recurring: true
policy_text: Annual leave requires two weeks notice.
`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// =============================================================================
// FIXTURE
// =============================================================================

func TestFixture_Request(t *testing.T) {
	// GIVEN: A complete snapshot
	f, err := LoadFixture(writeFixture(t, aliceFixture))
	require.NoError(t, err)

	// WHEN: Converting it
	req, err := f.Request("I'm sick today", nil)

	// THEN: Every section is carried over
	require.NoError(t, err)
	require.NotNil(t, req.Employee)
	assert.Equal(t, "Alice Martin", req.Employee.Name)
	assert.Equal(t, 15.0, req.Employee.Balances[leave.LeaveAnnual].Float())
	require.NotNil(t, req.Team)
	assert.Equal(t, 10, req.Team.TeamSize)
	require.Len(t, req.Team.Blackouts, 1)
	assert.Equal(t, "Year-end close", req.Team.Blackouts[0].Label)
	require.Len(t, req.History, 1)
	assert.Equal(t, req.History[0].Start, req.History[0].End, "missing end defaults to start")
	require.Len(t, req.Holidays, 1)
	assert.True(t, req.Holidays[0].Recurring)
	assert.Contains(t, req.PolicyText, "two weeks")
}

func TestFixture_NoTeamMeansNilTeam(t *testing.T) {
	f, err := LoadFixture(writeFixture(t, "employee:\n  id: e1\n  name: Bob\n"))
	require.NoError(t, err)

	req, err := f.Request("vacation tomorrow", nil)

	require.NoError(t, err)
	assert.Nil(t, req.Team)
}

func TestFixture_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown balance type", "employee:\n  id: e1\n  name: Bob\n  balances:\n    sabbatical: 3\n"},
		{"inverted blackout", "employee:\n  id: e1\n  name: Bob\nteam:\n  size: 4\n  blackouts:\n    - start: 2025-05-10\n      end: 2025-05-01\n"},
		{"bad holiday date", "employee:\n  id: e1\n  name: Bob\nholidays:\n  - date: 25/12/2025\n    name: Christmas\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f, err := LoadFixture(writeFixture(t, tc.body))
			require.NoError(t, err)

			_, err = f.Request("text", nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadFixture_Missing(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// =============================================================================
// RUN
// =============================================================================

func TestRun_SickToday(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	path := writeFixture(t, aliceFixture)
	var out bytes.Buffer

	err := run([]string{"-text", "I'm sick today", "-fixture", path, "-today", "2025-03-05"}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "AUTO_APPROVED")
	assert.Contains(t, out.String(), "10.0 -> 9.0")
}

func TestRun_OverrideAndRules(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	// GIVEN: Rules demanding sixty days notice for annual leave
	rules := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(rules, []byte("notice_days:\n  annual: 60\n"), 0o644))
	path := writeFixture(t, aliceFixture)
	var out bytes.Buffer

	// WHEN: Evaluating a structured request
	err := run([]string{
		"-text", "family trip",
		"-fixture", path,
		"-config", rules,
		"-type", "annual", "-start", "2025-04-07", "-end", "2025-04-09",
		"-today", "2025-03-05",
		"-seed", "3",
	}, &out)

	// THEN: The notice failure routes it to the manager
	require.NoError(t, err)
	assert.Contains(t, out.String(), "ESCALATE_TO_MANAGER")
	assert.Contains(t, out.String(), "notice_period")
}

func TestRun_NoTeamIsError(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	path := writeFixture(t, "employee:\n  id: e1\n  name: Bob\n")
	var out bytes.Buffer

	err := run([]string{"-text", "I'm sick today", "-fixture", path}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "ERROR")
}

func TestRun_BadFlags(t *testing.T) {
	var out bytes.Buffer

	assert.Error(t, run([]string{"-text", "hi"}, &out), "fixture required")
	path := writeFixture(t, aliceFixture)
	assert.Error(t, run([]string{"-fixture", path, "-type", "sabbatical"}, &out))
	assert.Error(t, run([]string{"-fixture", path, "-today", "tomorrow"}, &out))
	assert.Error(t, run([]string{"-fixture", path, "-type", "annual", "-end", "2025-04-09"}, &out), "end without start")
}
