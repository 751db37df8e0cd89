package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/warp/leave-engine/leave"
)

// MessagePoster is the part of *slack.Client the notifier needs.
type MessagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts escalations to an HR channel. Auto-approvals are skipped.
type SlackNotifier struct {
	poster  MessagePoster
	channel string
}

func NewSlack(poster MessagePoster, channel string) *SlackNotifier {
	return &SlackNotifier{poster: poster, channel: channel}
}

func (s *SlackNotifier) Notify(ctx context.Context, ev Event) error {
	if !ev.IsEscalation() {
		return nil
	}
	_, _, err := s.poster.PostMessageContext(ctx, s.channel, slack.MsgOptionText(FormatEscalation(ev), false))
	if err != nil {
		return fmt.Errorf("post escalation %s to slack: %w", ev.EvaluationID, err)
	}
	return nil
}

// FormatEscalation renders the Slack message body.
func FormatEscalation(ev Event) string {
	route := "manager"
	if ev.Decision == string(leave.DecisionEscalateToHR) {
		route = "HR"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*Leave request needs %s review*\n", route)
	fmt.Fprintf(&b, "%s (%s): %s, %s to %s, %d days\n", ev.EmployeeName, ev.EmployeeID, ev.LeaveType, ev.StartDate, ev.EndDate, ev.Days)
	fmt.Fprintf(&b, "Confidence: %.0f/100\n", ev.Confidence)
	for _, v := range ev.Violations {
		fmt.Fprintf(&b, "• %s\n", v)
	}
	return strings.TrimRight(b.String(), "\n")
}
