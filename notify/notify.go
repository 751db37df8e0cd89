/*
Package notify publishes adjudication outcomes to downstream systems.

PURPOSE:
  Every decision is published as an event on Kafka for payroll and analytics;
  escalations are also posted to an HR Slack channel so a human picks them
  up. Notification is best effort: a failure is logged by the caller and
  never changes the decision returned to the employee.

USAGE:
  n := notify.Multi{
      notify.NewKafka(writer, notify.DefaultTopic),
      notify.NewSlack(slackClient, "#hr-leave"),
  }
  if err := n.Notify(ctx, notify.EventFromResult(res, emp, time.Now())); err != nil {
      logger.Warn("notify failed", zap.Error(err))
  }

SEE ALSO:
  - api/handlers.go: Calls the notifier after each persisted decision
*/
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/warp/leave-engine/leave"
)

// Event is the wire form of one decision.
type Event struct {
	EvaluationID string    `json:"evaluation_id"`
	EmployeeID   string    `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Department   string    `json:"department,omitempty"`
	LeaveType    string    `json:"leave_type"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	Days         int       `json:"days"`
	Decision     string    `json:"decision"`
	Confidence   float64   `json:"confidence"`
	Violations   []string  `json:"violations,omitempty"`
	Rationale    string    `json:"rationale"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventFromResult flattens an adjudicated result.
func EventFromResult(res *leave.Result, emp leave.Employee, at time.Time) Event {
	ev := Event{
		EvaluationID: res.EvaluationID,
		EmployeeID:   string(emp.ID),
		EmployeeName: emp.Name,
		Department:   emp.Department,
		LeaveType:    string(res.Intent.LeaveType),
		StartDate:    res.Intent.Start().String(),
		EndDate:      res.Intent.End().String(),
		Days:         res.RequestedDays,
		Decision:     string(res.Decision),
		Confidence:   res.Confidence,
		Rationale:    res.Rationale,
		OccurredAt:   at.UTC(),
	}
	for _, v := range res.Violations {
		ev.Violations = append(ev.Violations, v.Message)
	}
	return ev
}

// IsEscalation reports whether a human has to act on the event.
func (e Event) IsEscalation() bool {
	return leave.Decision(e.Decision).IsEscalation()
}

// Notifier delivers an event somewhere.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }
