package leave_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/leave-engine/generic"
	"github.com/warp/leave-engine/leave"
)

func extract(t *testing.T, text string) leave.Intent {
	t.Helper()
	x := &leave.Extractor{}
	intent, err := x.Extract(context.Background(), leave.ExtractInput{Text: text, Today: testToday})
	require.NoError(t, err)
	return intent
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestClassifyLeaveType(t *testing.T) {
	tests := []struct {
		text string
		want leave.LeaveType
	}{
		{"I'm sick today", leave.LeaveSick},
		{"I have a fever", leave.LeaveSick},
		{"urgent doctor appointment", leave.LeaveSick}, // sick outranks emergency
		{"family crisis, need to leave", leave.LeaveEmergency},
		{"Going on a trip to Lisbon", leave.LeaveAnnual},
		{"maternity leave from June", leave.LeaveMaternity},
		{"paternity leave please", leave.LeavePaternity},
		{"my grandfather passed away", leave.LeaveBereavement},
		{"my father passed away", leave.LeaveBereavement}, // a relative is not a paternity keyword
		{"father of a newborn", leave.LeavePaternity},
		{"I have exams next week", leave.LeaveStudy},
		{"some personal matters", leave.LeavePersonal},
		{"Leave on January 15th", leave.LeaveAnnual},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, _ := leave.ClassifyLeaveType(tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyLeaveType_WholeWordsOnly(t *testing.T) {
	// "illustrate" contains "ill" but is not a sick keyword
	got, matched := leave.ClassifyLeaveType("I want to illustrate a book")
	assert.False(t, matched)
	assert.Equal(t, leave.LeaveAnnual, got)
}

// =============================================================================
// DATES
// =============================================================================

func TestExtract_RelativeDates(t *testing.T) {
	tests := []struct {
		text  string
		start string
		end   string
	}{
		{"off today", "2025-03-05", "2025-03-05"},
		{"off tomorrow", "2025-03-06", "2025-03-06"},
		{"next week please", "2025-03-10", "2025-03-10"},
		{"next friday", "2025-03-07", "2025-03-07"},
		{"next wednesday", "2025-03-12", "2025-03-12"}, // same weekday skips a week
		{"from tomorrow until next tuesday", "2025-03-06", "2025-03-11"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			intent := extract(t, tt.text)
			assert.Equal(t, tt.start, intent.Start().String())
			assert.Equal(t, tt.end, intent.End().String())
		})
	}
}

func TestExtract_MonthNames_YearRollover(t *testing.T) {
	// GIVEN: today is March 2025
	// THEN: January rolls to next year, March stays in the current one
	assert.Equal(t, "2026-01-15", extract(t, "Leave on January 15th").Start().String())
	assert.Equal(t, "2025-03-20", extract(t, "March 20th").Start().String())

	intent := extract(t, "from the 20th of March to March 24")
	assert.Equal(t, "2025-03-20", intent.Start().String())
	assert.Equal(t, "2025-03-24", intent.End().String())

	assert.Equal(t, "2027-02-03", extract(t, "Feb 3, 2027").Start().String())
}

func TestExtract_NumericFormats(t *testing.T) {
	intent := extract(t, "from 10/03/2025 to 14-03-2025")
	assert.Equal(t, "2025-03-10", intent.Start().String())
	assert.Equal(t, "2025-03-14", intent.End().String())

	intent = extract(t, "2025-04-02 and 2025-04-01")
	assert.Equal(t, "2025-04-01", intent.Start().String())
	assert.Equal(t, "2025-04-02", intent.End().String())
}

func TestExtract_InvalidDay_Ignored(t *testing.T) {
	// February 30 doesn't exist: falls back to the lenient default
	intent := extract(t, "vacation on February 30")
	assert.Equal(t, "2025-03-06", intent.Start().String())
}

func TestExtract_NoDate_LenientDefaultsToTomorrow(t *testing.T) {
	intent := extract(t, "I need a vacation")
	assert.Equal(t, "2025-03-06", intent.Start().String())
	assert.Equal(t, "2025-03-06", intent.End().String())
}

func TestExtract_NoDate_StrictFails(t *testing.T) {
	x := &leave.Extractor{}
	_, err := x.Extract(context.Background(), leave.ExtractInput{
		Text:   "I need a vacation",
		Today:  testToday,
		Strict: true,
	})

	require.Error(t, err)
	assert.True(t, leave.IsParseError(err))
	assert.True(t, errors.Is(err, leave.ErrNoDate))
}

func TestExtract_DurationPhrase_CoversBusinessDays(t *testing.T) {
	// GIVEN: Friday start, 5 working days, a holiday on Monday
	cal := generic.NewStaticCalendar([]generic.Holiday{{ID: "h", Date: date(2025, time.March, 10), Name: "Spring Day"}})
	x := &leave.Extractor{}

	// WHEN
	intent, err := x.Extract(context.Background(), leave.ExtractInput{
		Text:     "5 working days from 2025-03-07",
		Today:    testToday,
		Calendar: cal,
	})

	// THEN: Fri 7, Tue 11 .. Fri 14
	require.NoError(t, err)
	assert.Equal(t, "2025-03-07", intent.Start().String())
	assert.Equal(t, "2025-03-14", intent.End().String())
	assert.Equal(t, 5, leave.RequestedDays(intent, cal))
}

func TestExtract_RangeCap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		override *leave.Override
		wantErr  bool
	}{
		{"absurd span in text", "annual leave from 0001-01-01 to 9999-12-31", nil, true},
		{"long override", "", &leave.Override{Start: date(2025, time.March, 10), End: date(2026, time.March, 11)}, true},
		{"long duration phrase", "400 days from 2025-03-07", nil, true},
		{"exactly at the cap", "", &leave.Override{Start: date(2025, time.March, 10), End: date(2026, time.March, 10)}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x := &leave.Extractor{}
			_, err := x.Extract(context.Background(), leave.ExtractInput{
				Text:         tc.text,
				Override:     tc.override,
				Today:        testToday,
				MaxRangeDays: 366,
			})

			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, leave.IsParseError(err))
			assert.True(t, errors.Is(err, leave.ErrRangeTooLong))
		})
	}
}

func TestRequestedDays_WeekendOnly_IsOne(t *testing.T) {
	intent := leave.Intent{Period: generic.Period{Start: date(2025, time.March, 8), End: date(2025, time.March, 9)}}
	assert.Equal(t, 1, leave.RequestedDays(intent, nil))
}

// =============================================================================
// OVERRIDES AND REWRITING
// =============================================================================

func TestExtract_OverrideWins(t *testing.T) {
	x := &leave.Extractor{}
	intent, err := x.Extract(context.Background(), leave.ExtractInput{
		Text: "vacation tomorrow",
		Override: &leave.Override{
			LeaveType: leave.LeaveStudy,
			Start:     date(2025, time.April, 1),
			End:       date(2025, time.April, 3),
		},
		Today: testToday,
	})

	require.NoError(t, err)
	assert.Equal(t, leave.LeaveStudy, intent.LeaveType)
	assert.Equal(t, "2025-04-01", intent.Start().String())
	assert.Equal(t, "2025-04-03", intent.End().String())
}

func TestExtract_OverrideEndBeforeStart(t *testing.T) {
	x := &leave.Extractor{}
	_, err := x.Extract(context.Background(), leave.ExtractInput{
		Override: &leave.Override{Start: date(2025, time.April, 3), End: date(2025, time.April, 1)},
		Today:    testToday,
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, leave.ErrInvalidDates))
}

type fakeRewriter struct {
	out string
	err error
}

func (f fakeRewriter) Rewrite(context.Context, string, leave.LeaveType) (string, error) {
	return f.out, f.err
}

func TestExtract_RewriterNeverChangesTypeOrDates(t *testing.T) {
	x := &leave.Extractor{Rewriter: fakeRewriter{out: "I would like to request annual leave next month."}}
	intent, err := x.Extract(context.Background(), leave.ExtractInput{Text: "sick today", Today: testToday})

	require.NoError(t, err)
	assert.Equal(t, leave.LeaveSick, intent.LeaveType)
	assert.Equal(t, "2025-03-05", intent.Start().String())
	assert.Equal(t, "I would like to request annual leave next month.", intent.RewrittenReason)
	assert.Equal(t, "sick today", intent.RawReason)
}

func TestExtract_RewriterFailure_FallsBack(t *testing.T) {
	x := &leave.Extractor{Rewriter: fakeRewriter{err: errors.New("model unavailable")}}
	intent, err := x.Extract(context.Background(), leave.ExtractInput{Text: "  sick TODAY ", Today: testToday})

	require.NoError(t, err)
	assert.Equal(t, "Sick today", intent.RewrittenReason)
}

func TestFallbackReason(t *testing.T) {
	assert.Equal(t, "I need a break", leave.FallbackReason("  i NEED a Break "))
	assert.Equal(t, "", leave.FallbackReason("   "))
	assert.Equal(t, "Élan", leave.FallbackReason("élan"))
}
