package leave

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// INTENT EXTRACTOR
// =============================================================================

// Extractor turns request text plus optional overrides into an Intent.
// The zero value is usable: default matchers, fallback reason rewriting.
type Extractor struct {
	Matchers []DateMatcher
	Rewriter Rewriter
	Logger   *zap.Logger
}

// ExtractInput is everything Extract depends on. Today is passed in so the
// extractor never reads the clock.
type ExtractInput struct {
	Text     string
	Override *Override
	Today    generic.TimePoint
	Calendar generic.HolidayCalendar
	Strict   bool
	// MaxRangeDays rejects longer ranges with a ParseError. 0 means no cap.
	MaxRangeDays int
}

// Extract classifies the leave type, resolves the date range and produces
// the reason. It returns a *ParseError when no usable range can be built.
func (x *Extractor) Extract(ctx context.Context, in ExtractInput) (Intent, error) {
	text := strings.TrimSpace(in.Text)
	ov := in.Override
	if text == "" && (ov == nil || (ov.LeaveType == "" && !ov.hasDates() && ov.Reason == "")) {
		return Intent{}, &ParseError{Input: in.Text, Reason: "empty request", Err: ErrNoDate}
	}

	leaveType, _ := ClassifyLeaveType(text)
	if ov != nil && ov.LeaveType != "" {
		leaveType = ov.LeaveType
	}

	period, duration, err := x.resolvePeriod(text, in)
	if err != nil {
		return Intent{}, err
	}

	raw := text
	if ov != nil && ov.Reason != "" {
		raw = strings.TrimSpace(ov.Reason)
	}
	rewritten, rerr := rewriteReason(ctx, x.Rewriter, raw, leaveType)
	if rerr != nil {
		x.logger().Warn("reason rewrite failed, using fallback", zap.Error(rerr))
	}

	return Intent{
		LeaveType:       leaveType,
		Period:          period,
		RawReason:       raw,
		RewrittenReason: rewritten,
		DurationDays:    duration,
	}, nil
}

// ResolvePeriod resolves only the date range, without rewriting the reason.
// Callers use it to scope snapshot lookups (who else is away) before Evaluate.
func (x *Extractor) ResolvePeriod(in ExtractInput) (generic.Period, error) {
	p, _, err := x.resolvePeriod(strings.TrimSpace(in.Text), in)
	return p, err
}

func (x *Extractor) resolvePeriod(text string, in ExtractInput) (generic.Period, int, error) {
	p, duration, err := x.rawPeriod(text, in)
	if err != nil {
		return generic.Period{}, 0, err
	}
	if in.MaxRangeDays > 0 && p.Length() > in.MaxRangeDays {
		return generic.Period{}, 0, rangeTooLong(in)
	}
	return p, duration, nil
}

func rangeTooLong(in ExtractInput) *ParseError {
	return &ParseError{
		Input:  in.Text,
		Reason: fmt.Sprintf("a single request may span at most %d days", in.MaxRangeDays),
		Err:    ErrRangeTooLong,
	}
}

func (x *Extractor) rawPeriod(text string, in ExtractInput) (generic.Period, int, error) {
	if ov := in.Override; ov.hasDates() {
		end := ov.End
		if end.IsZero() {
			end = ov.Start
		}
		p, err := generic.NewPeriod(ov.Start, end)
		if err != nil {
			return generic.Period{}, 0, &ParseError{Input: in.Text, Reason: "end date is before start date", Err: ErrInvalidDates}
		}
		return p, 0, nil
	}

	matchers := x.Matchers
	if matchers == nil {
		matchers = DefaultDateMatchers()
	}
	dates := FindDates(text, in.Today, matchers)
	duration, hasDuration := ParseDuration(text)

	if len(dates) == 0 {
		if in.Strict {
			return generic.Period{}, 0, &ParseError{
				Input:  in.Text,
				Reason: "please clarify the dates of your leave",
				Err:    ErrNoDate,
			}
		}
		dates = []generic.TimePoint{in.Today.AddDays(1)}
	}

	start, end := dates[0], dates[len(dates)-1]
	if hasDuration {
		// n business days always span at least n calendar days.
		if in.MaxRangeDays > 0 && duration > in.MaxRangeDays {
			return generic.Period{}, 0, rangeTooLong(in)
		}
		p := generic.ExtendToBusinessDays(start, duration, in.Calendar)
		return p, duration, nil
	}
	return generic.Period{Start: start, End: end}, 0, nil
}

func (x *Extractor) logger() *zap.Logger {
	if x.Logger == nil {
		return zap.NewNop()
	}
	return x.Logger
}

// RequestedDays counts business days in the intent's range, never less than 1.
func RequestedDays(intent Intent, calendar generic.HolidayCalendar) int {
	days := intent.Period.BusinessDays(calendar)
	if days < 1 {
		return 1
	}
	return days
}
