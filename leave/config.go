package leave

import (
	"fmt"
	"sync/atomic"
)

// =============================================================================
// CONFIG - Thresholds and rule parameters
// =============================================================================

// Config is the only long-lived state the pipeline reads. A Config handed to
// Evaluate is treated as immutable; changes go through ConfigStore.Update.
type Config struct {
	AutoApproveThreshold float64
	EscalateThreshold    float64

	// Per leave type. A missing entry in NoticeDays means no notice required,
	// a missing entry in MaxDuration or ConsecutiveLimit means no cap.
	NoticeDays          map[LeaveType]int
	MaxDuration         map[LeaveType]int
	ConsecutiveLimit    map[LeaveType]int
	StatutoryAllowances map[LeaveType]int

	DefaultMaxConcurrent int
	HistoryWindowDays    int
	HistoryLimit         int

	// StrictDates turns "no date in text" into NEEDS_INFO instead of
	// assuming tomorrow.
	StrictDates bool

	// MaxRangeDays caps the calendar span of one request; longer ranges are
	// sent back for clarification. 0 disables the cap.
	MaxRangeDays int

	DisabledRules map[RuleID]bool
}

// DefaultConfig returns the stock organisation policy.
func DefaultConfig() *Config {
	return &Config{
		AutoApproveThreshold: 85,
		EscalateThreshold:    60,
		NoticeDays: map[LeaveType]int{
			LeaveEmergency:   0,
			LeaveSick:        0,
			LeaveBereavement: 0,
			LeavePersonal:    3,
			LeaveAnnual:      7,
			LeavePaternity:   14,
			LeaveStudy:       14,
			LeaveMaternity:   30,
		},
		MaxDuration: map[LeaveType]int{
			LeaveAnnual:      20,
			LeaveSick:        15,
			LeaveEmergency:   5,
			LeavePersonal:    5,
			LeaveMaternity:   180,
			LeavePaternity:   15,
			LeaveBereavement: 5,
			LeaveStudy:       10,
		},
		ConsecutiveLimit: map[LeaveType]int{
			LeaveAnnual:    10,
			LeaveSick:      5,
			LeaveEmergency: 3,
		},
		StatutoryAllowances: map[LeaveType]int{
			LeaveMaternity:   180,
			LeavePaternity:   14,
			LeaveBereavement: 5,
			LeaveStudy:       10,
		},
		DefaultMaxConcurrent: 2,
		HistoryWindowDays:    90,
		HistoryLimit:         10,
		MaxRangeDays:         366,
		DisabledRules:        map[RuleID]bool{},
	}
}

// Validate checks threshold ordering and non-negative parameters.
func (c *Config) Validate() error {
	if c.EscalateThreshold < 0 || c.AutoApproveThreshold > 100 {
		return fmt.Errorf("%w: thresholds must be within [0, 100]", ErrInvalidConfig)
	}
	if c.EscalateThreshold > c.AutoApproveThreshold {
		return fmt.Errorf("%w: escalate threshold %.1f above auto-approve threshold %.1f",
			ErrInvalidConfig, c.EscalateThreshold, c.AutoApproveThreshold)
	}
	for name, m := range map[string]map[LeaveType]int{
		"notice_days":          c.NoticeDays,
		"max_duration":         c.MaxDuration,
		"consecutive_limit":    c.ConsecutiveLimit,
		"statutory_allowances": c.StatutoryAllowances,
	} {
		for lt, v := range m {
			if v < 0 {
				return fmt.Errorf("%w: %s[%s] is negative", ErrInvalidConfig, name, lt)
			}
		}
	}
	if c.DefaultMaxConcurrent < 0 || c.HistoryWindowDays < 0 || c.HistoryLimit < 0 || c.MaxRangeDays < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidConfig)
	}
	return nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.NoticeDays = cloneIntMap(c.NoticeDays)
	out.MaxDuration = cloneIntMap(c.MaxDuration)
	out.ConsecutiveLimit = cloneIntMap(c.ConsecutiveLimit)
	out.StatutoryAllowances = cloneIntMap(c.StatutoryAllowances)
	out.DisabledRules = make(map[RuleID]bool, len(c.DisabledRules))
	for k, v := range c.DisabledRules {
		out.DisabledRules[k] = v
	}
	return &out
}

// RuleEnabled reports whether the rule takes part in evaluation.
func (c *Config) RuleEnabled(id RuleID) bool {
	return !c.DisabledRules[id]
}

func cloneIntMap(in map[LeaveType]int) map[LeaveType]int {
	out := make(map[LeaveType]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// =============================================================================
// CONFIG STORE - Copy-on-write holder
// =============================================================================

// ConfigStore holds the current Config. Readers get a snapshot that is never
// mutated; writers publish a new snapshot atomically.
type ConfigStore struct {
	current atomic.Pointer[Config]
}

// NewConfigStore returns a store holding cfg, or DefaultConfig when nil.
func NewConfigStore(cfg *Config) *ConfigStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &ConfigStore{}
	s.current.Store(cfg.Clone())
	return s
}

// Load returns the current snapshot. Callers must not modify it.
func (s *ConfigStore) Load() *Config {
	return s.current.Load()
}

// Store validates cfg and replaces the current snapshot with a copy of it.
func (s *ConfigStore) Store(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.current.Store(cfg.Clone())
	return nil
}

// Update applies fn to a copy of the current snapshot and publishes it.
// Concurrent updates are retried so none is lost.
func (s *ConfigStore) Update(fn func(*Config) error) (*Config, error) {
	for {
		old := s.current.Load()
		next := old.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		if err := next.Validate(); err != nil {
			return nil, err
		}
		if s.current.CompareAndSwap(old, next) {
			return next, nil
		}
	}
}
