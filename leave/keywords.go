package leave

import (
	"regexp"
	"strings"
)

// =============================================================================
// KEYWORD FAMILIES - Leave type classification
// =============================================================================

// keywordFamily maps a set of whole-word keywords to a leave type.
type keywordFamily struct {
	Type    LeaveType
	Pattern *regexp.Regexp
}

// wordsPattern builds a case-insensitive whole-word alternation. Each word
// also matches its simple plural.
func wordsPattern(words ...string) *regexp.Regexp {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)s?\b`)
}

// leaveFamilies is in priority order: the first family with any match wins.
// Keywords name the leave, not a relative, so a death notice naming a parent
// still reaches bereavement.
var leaveFamilies = []keywordFamily{
	{LeaveSick, wordsPattern("sick", "sickness", "ill", "illness", "fever", "cold", "flu", "doctor", "health", "medical", "hospital", "unwell")},
	{LeaveEmergency, wordsPattern("emergency", "emergencies", "urgent", "urgently", "crisis")},
	{LeaveAnnual, wordsPattern("vacation", "holiday", "trip", "travel", "tour", "annual")},
	{LeaveMaternity, wordsPattern("maternity", "pregnancy", "pregnant", "baby", "delivery")},
	{LeavePaternity, wordsPattern("paternity", "newborn")},
	{LeaveBereavement, wordsPattern("funeral", "bereavement", "death", "passed away", "mourning")},
	{LeaveStudy, wordsPattern("study", "exam", "course", "training", "education")},
	{LeavePersonal, wordsPattern("personal", "private")},
}

// ClassifyLeaveType returns the leave type implied by text and whether any
// keyword matched. Without a match the type defaults to annual.
func ClassifyLeaveType(text string) (LeaveType, bool) {
	for _, f := range leaveFamilies {
		if f.Pattern.MatchString(text) {
			return f.Type, true
		}
	}
	return LeaveAnnual, false
}

// urgencyWords flags a historical reason as urgent for pattern detection.
var urgencyWords = wordsPattern("urgent", "urgently", "emergency", "emergencies")
