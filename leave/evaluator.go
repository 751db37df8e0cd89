package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// EVALUATOR - The single entry point
// =============================================================================

// Request is one leave request plus every snapshot needed to adjudicate it.
// All lookups happen before Evaluate; a nil Employee or Team means the
// lookup failed.
type Request struct {
	Text       string
	Override   *Override
	Employee   *Employee
	Team       *TeamState
	History    []HistoryRecord
	Holidays   []generic.Holiday
	PolicyText string
}

// Result is the response handed back to the transport layer. It is always
// usable, including for NEEDS_INFO and ERROR.
type Result struct {
	EvaluationID  string
	Decision      Decision
	Confidence    float64
	Intent        Intent
	RequestedDays int

	Results    []ConstraintResult
	Violations []ConstraintResult
	Patterns   []PatternFinding
	Factors    Factors
	Faults     []string

	Issues      []string
	Suggestions []string
	Rationale   string

	Tone          ToneReading
	Urgency       Urgency
	TeamCapacity  float64
	BalanceBefore generic.Amount
	BalanceAfter  generic.Amount

	Timing time.Duration
	// Err is the parse or lookup failure behind NEEDS_INFO / ERROR.
	Err error
}

// TimingMs is the evaluation wall time in milliseconds.
func (r *Result) TimingMs() int64 { return r.Timing.Milliseconds() }

// Evaluator wires the pipeline stages. It holds no per-request state and is
// safe for concurrent use.
type Evaluator struct {
	Configs   *ConfigStore
	Extractor *Extractor
	Composer  *Composer
	Now       func() time.Time
	Logger    *zap.Logger
	// Rules overrides StandardRules when set.
	Rules func(*Config) []Rule
}

var snapshotValidator = validator.New()

// NewEvaluator returns an evaluator reading thresholds from configs.
func NewEvaluator(configs *ConfigStore, logger *zap.Logger) *Evaluator {
	if configs == nil {
		configs = NewConfigStore(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{
		Configs:   configs,
		Extractor: &Extractor{Logger: logger.Named("extractor")},
		Composer:  &Composer{Source: NewSeededSource(time.Now().UnixNano())},
		Now:       time.Now,
		Logger:    logger,
	}
}

// Evaluate adjudicates req against the current configuration snapshot.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) *Result {
	var cfg *Config
	if e.Configs != nil {
		cfg = e.Configs.Load()
	}
	return e.EvaluateWith(ctx, req, cfg)
}

// EvaluateWith adjudicates req against an explicit configuration.
func (e *Evaluator) EvaluateWith(ctx context.Context, req Request, cfg *Config) (res *Result) {
	started := time.Now()
	res = &Result{EvaluationID: uuid.NewString()}
	defer func() {
		if p := recover(); p != nil {
			e.logger().Error("evaluation panicked", zap.Any("panic", p))
			res = failed(res.EvaluationID, DecisionError, fmt.Errorf("internal evaluation failure: %v", p))
		}
		res.Timing = time.Since(started)
	}()

	if cfg == nil {
		cfg = DefaultConfig()
	}
	today := generic.DateOf(e.now())

	if err := validateSnapshots(req); err != nil {
		e.logger().Info("snapshot rejected", zap.Error(err))
		return failed(res.EvaluationID, DecisionError, err)
	}

	calendar := generic.NewStaticCalendar(req.Holidays)
	intent, err := e.extractor().Extract(ctx, ExtractInput{
		Text:         req.Text,
		Override:     req.Override,
		Today:        today,
		Calendar:     calendar,
		Strict:       cfg.StrictDates,
		MaxRangeDays: cfg.MaxRangeDays,
	})
	if err != nil {
		if IsParseError(err) {
			return failed(res.EvaluationID, DecisionNeedsInfo, err)
		}
		return failed(res.EvaluationID, DecisionError, err)
	}

	days := RequestedDays(intent, calendar)
	balance := ResolveBalance(cfg, *req.Employee, intent.LeaveType)

	rules := StandardRules(cfg)
	if e.Rules != nil {
		rules = e.Rules(cfg)
	}
	results, faults := EvaluateRules(rules, RuleInput{
		Intent:        intent,
		Employee:      *req.Employee,
		Team:          *req.Team,
		Config:        cfg,
		Today:         today,
		RequestedDays: days,
		Balance:       balance,
	}, e.logger())

	history := RecentHistory(req.History, today, cfg.HistoryWindowDays, cfg.HistoryLimit)
	patterns := DetectPatterns(intent, history)

	factors := BuildFactors(results, *req.Team, patterns, days)
	score := Score(factors)
	decision := Decide(score, days, cfg)
	assessment := Assess(results, factors, balance, *req.Team)

	res.Decision = decision
	res.Confidence = score
	res.Intent = intent
	res.RequestedDays = days
	res.Results = results
	res.Patterns = patterns
	res.Factors = factors
	res.Issues = assessment.Issues
	res.Suggestions = assessment.Suggestions
	res.TeamCapacity = factors.TeamCapacityPercent
	res.BalanceBefore = balance
	res.BalanceAfter = balance.Sub(generic.NewAmountFromInt(days, generic.UnitDays))
	res.Tone = DetectTone(intent.RawReason)
	res.Urgency = DetectUrgency(intent.RawReason, intent.Start(), today)
	for _, r := range results {
		if !r.Passed {
			res.Violations = append(res.Violations, r)
		}
	}
	for _, f := range faults {
		res.Faults = append(res.Faults, f.Error())
	}
	res.Rationale = e.composer().Compose(RationaleInput{
		Decision:       decision,
		Intent:         intent,
		Employee:       *req.Employee,
		RequestedDays:  days,
		Considerations: assessment.Issues,
		PolicyText:     req.PolicyText,
	})

	e.logger().Debug("leave request adjudicated",
		zap.String("evaluation_id", res.EvaluationID),
		zap.String("employee_id", string(req.Employee.ID)),
		zap.String("leave_type", string(intent.LeaveType)),
		zap.Int("days", days),
		zap.Float64("confidence", score),
		zap.String("decision", string(decision)),
		zap.Int("violations", len(res.Violations)),
	)
	return res
}

func failed(id string, d Decision, err error) *Result {
	msg := "We could not process this request right now: " + err.Error()
	if d == DecisionNeedsInfo {
		msg = NeedsInfoMessage(err)
	}
	return &Result{EvaluationID: id, Decision: d, Rationale: msg, Err: err}
}

// validateSnapshots maps missing or malformed snapshots to a LookupError.
func validateSnapshots(req Request) error {
	if req.Employee == nil {
		return &LookupError{What: "employee", Err: generic.ErrNotFound}
	}
	id := string(req.Employee.ID)
	if err := snapshotValidator.Struct(req.Employee); err != nil {
		return &LookupError{What: "employee", ID: id, Err: fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)}
	}
	for lt, b := range req.Employee.Balances {
		if b.IsNegative() {
			return &LookupError{What: "employee", ID: id, Err: fmt.Errorf("%w: negative %s balance", ErrInvalidSnapshot, lt)}
		}
	}
	if req.Team == nil {
		return &LookupError{What: "team", ID: id, Err: generic.ErrNotFound}
	}
	if err := snapshotValidator.Struct(req.Team); err != nil {
		return &LookupError{What: "team", ID: id, Err: fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)}
	}
	return nil
}

func (e *Evaluator) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Evaluator) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Evaluator) extractor() *Extractor {
	if e.Extractor == nil {
		return &Extractor{}
	}
	return e.Extractor
}

func (e *Evaluator) composer() *Composer {
	if e.Composer == nil {
		return &Composer{Source: FirstSource{}}
	}
	return e.Composer
}
