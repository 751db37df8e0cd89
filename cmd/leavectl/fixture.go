package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

// Fixture is the YAML snapshot leavectl evaluates against.
type Fixture struct {
	Employee   EmployeeFixture  `yaml:"employee"`
	Team       *TeamFixture     `yaml:"team"`
	History    []HistoryFixture `yaml:"history"`
	Holidays   []HolidayFixture `yaml:"holidays"`
	PolicyText string           `yaml:"policy_text"`
}

type EmployeeFixture struct {
	ID         string             `yaml:"id"`
	Name       string             `yaml:"name"`
	Department string             `yaml:"department"`
	Balances   map[string]float64 `yaml:"balances"`
}

type TeamFixture struct {
	Size                int               `yaml:"size"`
	OnLeave             []string          `yaml:"on_leave"`
	OnLeaveCount        int               `yaml:"on_leave_count"`
	MinRequiredCoverage int               `yaml:"min_required_coverage"`
	MaxConcurrentLeave  int               `yaml:"max_concurrent_leave"`
	Blackouts           []BlackoutFixture `yaml:"blackouts"`
}

type BlackoutFixture struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Label string `yaml:"label"`
}

type HistoryFixture struct {
	LeaveType string `yaml:"leave_type"`
	Start     string `yaml:"start"`
	End       string `yaml:"end"`
	Reason    string `yaml:"reason"`
	Status    string `yaml:"status"`
}

type HolidayFixture struct {
	Date      string `yaml:"date"`
	Name      string `yaml:"name"`
	Recurring bool   `yaml:"recurring"`
}

func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Request converts the fixture into evaluator input. A fixture without a
// team section yields a nil team, which the evaluator reports as ERROR.
func (f *Fixture) Request(text string, override *leave.Override) (leave.Request, error) {
	req := leave.Request{Text: text, Override: override, PolicyText: f.PolicyText}

	emp := &leave.Employee{
		ID:         generic.EmployeeID(f.Employee.ID),
		Name:       f.Employee.Name,
		Department: f.Employee.Department,
		Balances:   make(map[leave.LeaveType]generic.Amount, len(f.Employee.Balances)),
	}
	for name, v := range f.Employee.Balances {
		lt, ok := leave.ParseLeaveType(name)
		if !ok {
			return leave.Request{}, fmt.Errorf("employee balance: unknown leave type %q", name)
		}
		emp.Balances[lt] = generic.NewAmount(v, generic.UnitDays)
	}
	req.Employee = emp

	if t := f.Team; t != nil {
		team := &leave.TeamState{
			TeamSize:            t.Size,
			OnLeave:             t.OnLeave,
			OnLeaveCount:        t.OnLeaveCount,
			MinRequiredCoverage: t.MinRequiredCoverage,
			MaxConcurrentLeave:  t.MaxConcurrentLeave,
		}
		for _, b := range t.Blackouts {
			p, err := parsePeriod(b.Start, b.End)
			if err != nil {
				return leave.Request{}, fmt.Errorf("blackout %q: %w", b.Label, err)
			}
			team.Blackouts = append(team.Blackouts, leave.BlackoutWindow{Period: p, Label: b.Label})
		}
		req.Team = team
	}

	for _, h := range f.History {
		lt, ok := leave.ParseLeaveType(h.LeaveType)
		if !ok {
			return leave.Request{}, fmt.Errorf("history: unknown leave type %q", h.LeaveType)
		}
		end := h.End
		if end == "" {
			end = h.Start
		}
		p, err := parsePeriod(h.Start, end)
		if err != nil {
			return leave.Request{}, fmt.Errorf("history: %w", err)
		}
		req.History = append(req.History, leave.HistoryRecord{
			LeaveType: lt,
			Start:     p.Start,
			End:       p.End,
			Reason:    h.Reason,
			Status:    h.Status,
		})
	}

	for _, h := range f.Holidays {
		d, err := generic.ParseDate(h.Date)
		if err != nil {
			return leave.Request{}, fmt.Errorf("holiday %q: %w", h.Name, err)
		}
		req.Holidays = append(req.Holidays, generic.Holiday{Date: d, Name: h.Name, Recurring: h.Recurring})
	}
	return req, nil
}

func parsePeriod(start, end string) (generic.Period, error) {
	s, err := generic.ParseDate(start)
	if err != nil {
		return generic.Period{}, err
	}
	e, err := generic.ParseDate(end)
	if err != nil {
		return generic.Period{}, err
	}
	return generic.NewPeriod(s, e)
}
