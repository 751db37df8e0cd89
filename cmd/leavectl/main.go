/*
main.go - Offline leave evaluation

PURPOSE:
  Evaluates one leave request against a YAML snapshot without a database
  or server. Useful for tuning rules files and reproducing decisions.

USAGE:
  leavectl -text "I need 5 days vacation next week" -fixture alice.yaml
  leavectl -text "I'm sick today" -fixture alice.yaml -today 2025-03-05 -seed 7

COMMAND-LINE FLAGS:
  -text     Free-text request (required)
  -fixture  YAML snapshot: employee, team, history, holidays (required)
  -config   Adjudication rules file (default: built-in rules)
  -seed     Rationale template seed (0 picks the first template)
  -today    Evaluation date, YYYY-MM-DD (default: now)
  -type, -start, -end
            Structured intent fields that override the parsed text
  -width    Output width
  -v        Debug logging to stderr

SEE ALSO:
  - cmd/server/main.go: HTTP server
  - factory/config.go: Rules file format
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/warp/leave-engine/factory"
	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
	"github.com/warp/leave-engine/llm"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "leavectl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("leavectl", flag.ContinueOnError)
	text := fs.String("text", "", "Free-text leave request")
	fixturePath := fs.String("fixture", "", "YAML snapshot file")
	rulesPath := fs.String("config", "", "Adjudication rules file")
	seed := fs.Int64("seed", 0, "Rationale template seed")
	today := fs.String("today", "", "Evaluation date (YYYY-MM-DD)")
	leaveType := fs.String("type", "", "Leave type override")
	start := fs.String("start", "", "Start date override (YYYY-MM-DD)")
	end := fs.String("end", "", "End date override (YYYY-MM-DD)")
	width := fs.Int("width", 78, "Output width")
	verbose := fs.Bool("v", false, "Debug logging")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *fixturePath == "" {
		return errors.New("-fixture is required")
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
		defer logger.Sync()
	}

	fixture, err := LoadFixture(*fixturePath)
	if err != nil {
		return err
	}
	override, err := parseOverride(*leaveType, *start, *end)
	if err != nil {
		return err
	}
	req, err := fixture.Request(*text, override)
	if err != nil {
		return err
	}

	rules := leave.DefaultConfig()
	if *rulesPath != "" {
		if rules, err = factory.LoadFile(*rulesPath); err != nil {
			return err
		}
	}

	evaluator := leave.NewEvaluator(leave.NewConfigStore(rules), logger)
	if *seed != 0 {
		evaluator.Composer = &leave.Composer{Source: leave.NewSeededSource(*seed)}
	} else {
		evaluator.Composer = &leave.Composer{Source: leave.FirstSource{}}
	}
	if *today != "" {
		day, err := generic.ParseDate(*today)
		if err != nil {
			return fmt.Errorf("-today: %w", err)
		}
		at := day.Time.Add(9 * time.Hour)
		evaluator.Now = func() time.Time { return at }
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		evaluator.Extractor.Rewriter = llm.New(key, os.Getenv("LLM_MODEL"), logger.Named("llm"))
	}

	res := evaluator.Evaluate(context.Background(), req)
	fmt.Fprintln(stdout, Render(res, *width))
	return nil
}

func parseOverride(leaveType, start, end string) (*leave.Override, error) {
	if leaveType == "" && start == "" && end == "" {
		return nil, nil
	}
	if start == "" && end != "" {
		return nil, errors.New("-end requires -start")
	}
	o := &leave.Override{}
	if leaveType != "" {
		lt, ok := leave.ParseLeaveType(leaveType)
		if !ok {
			return nil, fmt.Errorf("-type: unknown leave type %q", leaveType)
		}
		o.LeaveType = lt
	}
	if start != "" {
		p, err := parsePeriod(start, orDefault(end, start))
		if err != nil {
			return nil, fmt.Errorf("-start/-end: %w", err)
		}
		o.Start, o.End = p.Start, p.End
	}
	return o, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
