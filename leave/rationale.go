package leave

import (
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

// =============================================================================
// RATIONALE COMPOSER
// =============================================================================

// Source picks template indices. Tests inject a seeded source.
type Source interface {
	Intn(n int) int
}

// LockedSource is a seeded Source safe for concurrent evaluations.
type LockedSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSeededSource(seed int64) *LockedSource {
	return &LockedSource{rng: rand.New(rand.NewSource(seed))}
}

func (s *LockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// FirstSource always picks the first template.
type FirstSource struct{}

func (FirstSource) Intn(int) int { return 0 }

// RationaleInput is what the composer explains. It cannot change the decision.
type RationaleInput struct {
	Decision       Decision
	Intent         Intent
	Employee       Employee
	RequestedDays  int
	Considerations []string
	PolicyText     string
}

const (
	maxConsiderations = 3
	policyExcerptLen  = 200
)

// Composer renders decision explanations.
type Composer struct {
	Source Source
}

// Compose returns the message for an adjudicated decision.
func (c *Composer) Compose(in RationaleInput) string {
	vars := strings.NewReplacer(
		"{name}", firstName(in.Employee.Name),
		"{type}", in.Intent.LeaveType.Label(),
		"{days}", strconv.Itoa(in.RequestedDays),
		"{start}", in.Intent.Start().String(),
		"{end}", in.Intent.End().String(),
	)

	var b strings.Builder
	if in.Decision == DecisionAutoApproved {
		tmpl, ok := approvalTemplates[in.Intent.LeaveType]
		if !ok {
			tmpl = defaultApproval
		}
		b.WriteString(vars.Replace(tmpl))
	} else {
		pool, ok := escalationTemplates[in.Intent.LeaveType]
		if !ok {
			pool = defaultEscalation
		}
		b.WriteString(vars.Replace(pool[c.pick(len(pool))]))
		b.WriteString(" ")
		b.WriteString(routingLine(in.Decision))

		if n := len(in.Considerations); n > 0 {
			if n > maxConsiderations {
				n = maxConsiderations
			}
			b.WriteString("\n\nPoints the reviewer may want to look at, none of them blocking:")
			for _, item := range in.Considerations[:n] {
				b.WriteString("\n- ")
				b.WriteString(item)
			}
		}
	}

	if excerpt := policyExcerpt(in.PolicyText); excerpt != "" {
		b.WriteString("\n\nRelevant policy: ")
		b.WriteString(excerpt)
	}
	return b.String()
}

func (c *Composer) pick(n int) int {
	if c == nil || c.Source == nil || n <= 1 {
		return 0
	}
	i := c.Source.Intn(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}

func routingLine(d Decision) string {
	if d == DecisionEscalateToHR {
		return "It has been passed to HR, who can arrange the details with you."
	}
	return "It has been passed to your manager for a quick confirmation."
}

func policyExcerpt(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= policyExcerptLen {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:policyExcerptLen])) + "..."
}

func firstName(full string) string {
	if f := strings.Fields(full); len(f) > 0 {
		return f[0]
	}
	return "there"
}

// NeedsInfoMessage asks the employee to restate an unparseable request.
func NeedsInfoMessage(err error) string {
	return "We could not work out the details of your request (" + err.Error() +
		"). Please include the leave type and the dates, for example \"annual leave from 2025-07-01 to 2025-07-05\"."
}

// =============================================================================
// TEMPLATES
// =============================================================================

const defaultApproval = "Your {type} from {start} to {end} ({days} days) is approved. Enjoy the time, {name}."

var approvalTemplates = map[LeaveType]string{
	LeaveSick:        "Your sick leave from {start} to {end} is approved. Rest up and feel better soon, {name}.",
	LeaveEmergency:   "Your emergency leave from {start} to {end} is approved. Take care of what matters, {name}; we will cover things here.",
	LeaveAnnual:      "Your annual leave from {start} to {end} ({days} days) is approved. Enjoy the break, {name}.",
	LeavePersonal:    "Your personal leave from {start} to {end} is approved, {name}.",
	LeaveMaternity:   "Your maternity leave starting {start} is approved. Congratulations, {name}, and best wishes to your family.",
	LeavePaternity:   "Your paternity leave starting {start} is approved. Congratulations, {name}, enjoy the time with your family.",
	LeaveBereavement: "Your bereavement leave from {start} to {end} is approved. We are sorry for your loss, {name}.",
	LeaveStudy:       "Your study leave from {start} to {end} is approved. Good luck, {name}.",
}

var defaultEscalation = []string{
	"{name}'s request for {days} days of {type} starting {start} looks reasonable and we recommend approving it.",
	"{name} has asked for {type} from {start} to {end}. Nothing here should stand in the way of approval.",
}

var escalationTemplates = map[LeaveType][]string{
	LeaveSick: {
		"{name} needs {days} days of sick leave from {start}. Recovery time keeps the team healthy, so we recommend approving it.",
		"{name} is unwell and has asked for sick leave from {start} to {end}. Letting them rest now avoids a longer absence later.",
	},
	LeaveEmergency: {
		"{name} is dealing with an emergency and has asked for leave from {start} to {end}. Supporting them now matters more than the scheduling details.",
		"An urgent situation has come up for {name}, who needs {days} days starting {start}. We recommend approving it and sorting cover afterwards.",
	},
	LeaveAnnual: {
		"{name} has planned {days} days of annual leave from {start} to {end}. Time off is part of the package and keeps people effective, so we recommend approving it.",
		"{name} would like annual leave from {start} to {end}. With a little planning the team can cover this, and rest pays back in focus.",
		"{name}'s {days}-day vacation request starting {start} is worth approving; the points below can be handled with some planning.",
	},
	LeavePersonal: {
		"{name} has asked for personal leave from {start} to {end}. Respecting personal commitments builds trust, and we recommend approving it.",
	},
	LeaveMaternity: {
		"{name} has requested maternity leave starting {start}. This is a statutory entitlement and we recommend confirming it promptly.",
	},
	LeavePaternity: {
		"{name} has requested paternity leave starting {start}. Time with a newborn is an entitlement worth supporting, so we recommend approving it.",
	},
	LeaveBereavement: {
		"{name} has suffered a loss and asked for bereavement leave from {start} to {end}. We recommend approving it without delay.",
	},
	LeaveStudy: {
		"{name} has requested study leave from {start} to {end}. Investing in their development benefits the team, so we recommend approving it.",
		"{name} needs {days} days of study leave starting {start}. Supporting learning now pays off later; the points below can be planned around.",
	},
}
