/*
Package factory converts configuration documents into leave.Config.

PURPOSE:
  Thresholds and rule parameters live in a YAML (or JSON) document so HR can
  tune the adjudication policy without a redeploy. The factory parses the
  document, overlays it on leave.DefaultConfig() and validates the result.

DOCUMENT SCHEMA (YAML):
  thresholds:
    auto_approve: 85
    escalate: 60
  notice_days:
    annual: 7
    personal: 3
  max_duration:
    annual: 20
  consecutive_limit:
    annual: 10
  statutory_allowances:
    maternity: 180
  default_max_concurrent: 2
  history:
    window_days: 90
    limit: 10
  strict_dates: false
  disabled_rules: [blackout]

KEY FEATURES:
  - Missing fields keep their defaults, map entries are merged per leave type
  - "vacation" is accepted as an alias of "annual"
  - Unknown leave types and rule ids are rejected
  - JSON documents parse too (JSON is a YAML subset)

USAGE:
  cfg, err := factory.LoadFile("config/leave.yaml")
  if err != nil { ... }
  store := leave.NewConfigStore(cfg)

SEE ALSO:
  - leave/config.go: Config and ConfigStore
  - api/reloader.go: Scheduled reload of the same file
*/
package factory

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/warp/leave-engine/leave"
)

// =============================================================================
// DOCUMENT TYPES
// =============================================================================

// ConfigDocument is the serialised form of leave.Config.
type ConfigDocument struct {
	Thresholds           *ThresholdsDocument `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	NoticeDays           map[string]int      `yaml:"notice_days,omitempty" json:"notice_days,omitempty"`
	MaxDuration          map[string]int      `yaml:"max_duration,omitempty" json:"max_duration,omitempty"`
	ConsecutiveLimit     map[string]int      `yaml:"consecutive_limit,omitempty" json:"consecutive_limit,omitempty"`
	StatutoryAllowances  map[string]int      `yaml:"statutory_allowances,omitempty" json:"statutory_allowances,omitempty"`
	DefaultMaxConcurrent *int                `yaml:"default_max_concurrent,omitempty" json:"default_max_concurrent,omitempty"`
	History              *HistoryDocument    `yaml:"history,omitempty" json:"history,omitempty"`
	StrictDates          *bool               `yaml:"strict_dates,omitempty" json:"strict_dates,omitempty"`
	MaxRangeDays         *int                `yaml:"max_range_days,omitempty" json:"max_range_days,omitempty"`
	DisabledRules        []string            `yaml:"disabled_rules,omitempty" json:"disabled_rules,omitempty"`
}

type ThresholdsDocument struct {
	AutoApprove *float64 `yaml:"auto_approve,omitempty" json:"auto_approve,omitempty"`
	Escalate    *float64 `yaml:"escalate,omitempty" json:"escalate,omitempty"`
}

type HistoryDocument struct {
	WindowDays *int `yaml:"window_days,omitempty" json:"window_days,omitempty"`
	Limit      *int `yaml:"limit,omitempty" json:"limit,omitempty"`
}

var knownRules = map[leave.RuleID]bool{
	leave.RuleBlackout:         true,
	leave.RuleNoticePeriod:     true,
	leave.RuleTeamCoverage:     true,
	leave.RuleMaxConcurrent:    true,
	leave.RuleBalance:          true,
	leave.RuleMaxDuration:      true,
	leave.RuleConsecutiveLimit: true,
}

// =============================================================================
// PARSING
// =============================================================================

// ParseConfig parses a YAML or JSON document over the default config.
func ParseConfig(data []byte) (*leave.Config, error) {
	var doc ConfigDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse config document: %w", err)
	}
	return Apply(leave.DefaultConfig(), doc)
}

// LoadFile reads and parses a config file.
func LoadFile(path string) (*leave.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Apply overlays doc on a copy of base and validates the result.
func Apply(base *leave.Config, doc ConfigDocument) (*leave.Config, error) {
	cfg := base.Clone()

	if t := doc.Thresholds; t != nil {
		if t.AutoApprove != nil {
			cfg.AutoApproveThreshold = *t.AutoApprove
		}
		if t.Escalate != nil {
			cfg.EscalateThreshold = *t.Escalate
		}
	}

	for _, m := range []struct {
		name string
		src  map[string]int
		dst  map[leave.LeaveType]int
	}{
		{"notice_days", doc.NoticeDays, cfg.NoticeDays},
		{"max_duration", doc.MaxDuration, cfg.MaxDuration},
		{"consecutive_limit", doc.ConsecutiveLimit, cfg.ConsecutiveLimit},
		{"statutory_allowances", doc.StatutoryAllowances, cfg.StatutoryAllowances},
	} {
		if err := mergeLeaveMap(m.name, m.src, m.dst); err != nil {
			return nil, err
		}
	}

	if doc.DefaultMaxConcurrent != nil {
		cfg.DefaultMaxConcurrent = *doc.DefaultMaxConcurrent
	}
	if h := doc.History; h != nil {
		if h.WindowDays != nil {
			cfg.HistoryWindowDays = *h.WindowDays
		}
		if h.Limit != nil {
			cfg.HistoryLimit = *h.Limit
		}
	}
	if doc.StrictDates != nil {
		cfg.StrictDates = *doc.StrictDates
	}
	if doc.MaxRangeDays != nil {
		cfg.MaxRangeDays = *doc.MaxRangeDays
	}
	if doc.DisabledRules != nil {
		cfg.DisabledRules = make(map[leave.RuleID]bool, len(doc.DisabledRules))
		for _, id := range doc.DisabledRules {
			if !knownRules[leave.RuleID(id)] {
				return nil, fmt.Errorf("%w: unknown rule %q", leave.ErrInvalidConfig, id)
			}
			cfg.DisabledRules[leave.RuleID(id)] = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeLeaveMap(name string, src map[string]int, dst map[leave.LeaveType]int) error {
	for key, v := range src {
		lt, ok := leave.ParseLeaveType(key)
		if !ok {
			return fmt.Errorf("%w: %s has unknown leave type %q", leave.ErrInvalidConfig, name, key)
		}
		dst[lt] = v
	}
	return nil
}

// =============================================================================
// SERIALISATION
// =============================================================================

// ToDocument renders a config as a complete document.
func ToDocument(cfg *leave.Config) ConfigDocument {
	auto, esc := cfg.AutoApproveThreshold, cfg.EscalateThreshold
	maxConc := cfg.DefaultMaxConcurrent
	window, limit := cfg.HistoryWindowDays, cfg.HistoryLimit
	strict := cfg.StrictDates
	maxRange := cfg.MaxRangeDays

	doc := ConfigDocument{
		Thresholds:           &ThresholdsDocument{AutoApprove: &auto, Escalate: &esc},
		NoticeDays:           toStringMap(cfg.NoticeDays),
		MaxDuration:          toStringMap(cfg.MaxDuration),
		ConsecutiveLimit:     toStringMap(cfg.ConsecutiveLimit),
		StatutoryAllowances:  toStringMap(cfg.StatutoryAllowances),
		DefaultMaxConcurrent: &maxConc,
		History:              &HistoryDocument{WindowDays: &window, Limit: &limit},
		StrictDates:          &strict,
		MaxRangeDays:         &maxRange,
		DisabledRules:        []string{},
	}
	for id, off := range cfg.DisabledRules {
		if off {
			doc.DisabledRules = append(doc.DisabledRules, string(id))
		}
	}
	sort.Strings(doc.DisabledRules)
	return doc
}

// Marshal renders a config as YAML.
func Marshal(cfg *leave.Config) ([]byte, error) {
	return yaml.Marshal(ToDocument(cfg))
}

func toStringMap(in map[leave.LeaveType]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[string(k)] = v
	}
	return out
}
