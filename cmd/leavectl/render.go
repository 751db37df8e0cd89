package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/warp/leave-engine/leave"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Width(14)
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Italic(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

func decisionStyle(d leave.Decision) lipgloss.Style {
	color := "#FFB347"
	switch d {
	case leave.DecisionAutoApproved:
		color = "#4CAF50"
	case leave.DecisionEscalateToHR, leave.DecisionError:
		color = "#FF6B6B"
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
}

// Render formats a result for the terminal.
func Render(res *leave.Result, width int) string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render("Leave decision  "),
		decisionStyle(res.Decision).Render(string(res.Decision)),
	)

	var rows []string
	row := func(label, value string) {
		rows = append(rows, labelStyle.Render(label)+value)
	}

	if !res.Decision.IsAdjudicated() {
		row("Reason", res.Rationale)
		if res.Err != nil {
			row("Error", res.Err.Error())
		}
		return boxStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", strings.Join(rows, "\n")))
	}

	row("Confidence", fmt.Sprintf("%.1f / 100", res.Confidence))
	row("Leave", fmt.Sprintf("%s, %s to %s (%d days)",
		res.Intent.LeaveType.Label(), res.Intent.Start(), res.Intent.End(), res.RequestedDays))
	row("Reason", res.Intent.Reason())
	row("Balance", fmt.Sprintf("%.1f -> %.1f", res.BalanceBefore.Float(), res.BalanceAfter.Float()))
	row("Team", fmt.Sprintf("%.0f%% capacity, %d away", res.TeamCapacity, res.Factors.ConflictCount))
	row("Signals", fmt.Sprintf("%s tone, %s urgency", res.Tone.Tone, res.Urgency))

	var checks []string
	for _, r := range res.Results {
		mark := passStyle.Render("✓")
		switch {
		case r.Skipped:
			mark = skipStyle.Render("-")
		case !r.Passed:
			mark = failStyle.Render("✗")
		}
		checks = append(checks, fmt.Sprintf("%s %-18s %s", mark, r.RuleID, r.Message))
	}
	for _, p := range res.Patterns {
		checks = append(checks, fmt.Sprintf("%s %-18s %s", failStyle.Render("!"), p.Kind, p.Description))
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		strings.Join(rows, "\n"),
		"",
		strings.Join(checks, "\n"),
		"",
		lipgloss.NewStyle().Width(width-4).Render(res.Rationale),
	)
	return boxStyle.Width(width).Render(body)
}
