package leave

import (
	"fmt"
	"math"
	"strings"

	"github.com/warp/leave-engine/generic"
)

// =============================================================================
// TONE AND URGENCY - Reported with the result, not scored
// =============================================================================

type Tone string

const (
	ToneStressed Tone = "stressed"
	ToneCasual   Tone = "casual"
	ToneFormal   Tone = "formal"
	ToneAnxious  Tone = "anxious"
	ToneNeutral  Tone = "neutral"
)

type ToneReading struct {
	Tone       Tone    `json:"tone"`
	Confidence float64 `json:"confidence"`
}

var toneWords = []struct {
	Tone  Tone
	Words []string
}{
	{ToneStressed, []string{"emergency", "urgent", "asap", "critical", "immediately", "crisis", "desperate", "please help"}},
	{ToneCasual, []string{"maybe", "thinking", "considering", "might", "probably"}},
	{ToneFormal, []string{"request", "kindly", "would like", "wish to", "seeking"}},
	{ToneAnxious, []string{"worried", "concerned", "nervous", "afraid", "uncertain"}},
}

// DetectTone picks the tone with the most keyword hits, earliest listed on a tie.
func DetectTone(text string) ToneReading {
	best, bestHits := ToneNeutral, 0
	for _, tw := range toneWords {
		hits := 0
		for _, w := range tw.Words {
			if wholeWord(text, w) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = tw.Tone, hits
		}
	}
	if bestHits == 0 {
		return ToneReading{Tone: ToneNeutral, Confidence: 0.5}
	}
	return ToneReading{Tone: best, Confidence: math.Min(float64(bestHits)/3, 1)}
}

type Urgency string

const (
	UrgencyHigh   Urgency = "HIGH"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyLow    Urgency = "LOW"
)

var (
	highUrgencyWords   = []string{"emergency", "urgent", "asap", "immediately", "critical", "now"}
	mediumUrgencyWords = []string{"soon", "quickly", "short notice"}
)

// DetectUrgency combines keywords with how close the start date is.
func DetectUrgency(text string, start, today generic.TimePoint) Urgency {
	lead := generic.DaysBetween(today, start)
	for _, w := range highUrgencyWords {
		if wholeWord(text, w) {
			return UrgencyHigh
		}
	}
	if lead <= 2 {
		return UrgencyHigh
	}
	for _, w := range mediumUrgencyWords {
		if wholeWord(text, w) {
			return UrgencyMedium
		}
	}
	if lead <= 7 {
		return UrgencyMedium
	}
	return UrgencyLow
}

func wholeWord(text, word string) bool {
	lower := " " + strings.ToLower(text) + " "
	idx := 0
	for {
		i := strings.Index(lower[idx:], word)
		if i < 0 {
			return false
		}
		i += idx
		before, after := lower[i-1], lower[i+len(word)]
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		idx = i + 1
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_' || b == '\''
}

// =============================================================================
// ISSUES AND SUGGESTIONS
// =============================================================================

// Assessment is the list of points a reviewer should look at, each with an
// optional way forward.
type Assessment struct {
	Issues      []string
	Suggestions []string
}

func (a *Assessment) add(issue, suggestion string) {
	a.Issues = append(a.Issues, issue)
	if suggestion != "" && !contains(a.Suggestions, suggestion) {
		a.Suggestions = append(a.Suggestions, suggestion)
	}
}

// Assess collects the considerations behind a score.
func Assess(results []ConstraintResult, factors Factors, balance generic.Amount, team TeamState) Assessment {
	var a Assessment

	if !factors.BalanceSufficient {
		a.add(fmt.Sprintf("Requested %d days against an available balance of %s days", factors.RequestedDays, balance.Value),
			"Consider advance leave or splitting the request across periods")
	}
	if factors.TeamCapacityPercent < 50 {
		a.add(fmt.Sprintf("Team capacity would drop to %.0f%%", factors.TeamCapacityPercent),
			"Arrange partial coverage or cross-team support")
	}
	if factors.ConflictCount > 0 {
		who := fmt.Sprintf("%d colleague(s)", factors.ConflictCount)
		if len(team.OnLeave) > 0 {
			who = strings.Join(team.OnLeave, ", ")
		}
		a.add("Overlaps with leave already taken by "+who,
			"Coordinate a handover with colleagues who are also away")
	}
	for _, p := range factors.Patterns {
		a.add(p.Description, "")
	}
	if factors.RequestedDays > LongLeaveDays {
		a.add(fmt.Sprintf("Extended leave of %d days", factors.RequestedDays),
			"Prepare a handover plan before the leave starts")
	}
	for _, r := range results {
		if r.Passed || r.RuleID == RuleBalance {
			continue
		}
		a.add(r.Message, "")
	}
	return a
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
