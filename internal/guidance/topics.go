// Package guidance produces replies for an idle session: keyword-matched direct
// answers first, then a follow-up question chosen so recently covered topics
// are not repeated.
package guidance

import (
	"strings"

	"student-agent/internal/domain"
)

// Topics recorded with every guidance reply. The strategist compares against
// these when deciding what was recently discussed.
const (
	TopicRisk       = "risk"
	TopicAttendance = "attendance"
	TopicScores     = "scores"
	TopicStress     = "stress"
	TopicSleep      = "sleep"
	TopicMotivation = "motivation"
	TopicStudyPlan  = "study_plan"
	TopicHelp       = "help"
	TopicInterview  = "interview"
	TopicGeneral    = "general"

	TopicChallenge  = "challenge"
	TopicGoals      = "goals"
	TopicConfidence = "confidence"
	TopicStream     = "stream"
	TopicFinance    = "finance"
	TopicGap        = "gap"
	TopicWellbeing  = "wellbeing"

	TopicInterests       = "interests"
	TopicStudyTime       = "study_time"
	TopicFavoriteSubject = "favorite_subject"
	TopicSupport         = "support"
	TopicStudyBuddy      = "study_buddy"
	TopicCareer          = "career"
	TopicWeeklyWin       = "weekly_win"
)

// RecentTopics returns the topics of the last window log entries.
func RecentTopics(log []domain.LogEntry, window int) map[string]bool {
	out := map[string]bool{}
	if window <= 0 {
		return out
	}
	start := len(log) - window
	if start < 0 {
		start = 0
	}
	for _, e := range log[start:] {
		if e.Topic != "" {
			out[e.Topic] = true
		}
	}
	return out
}

// FrequentTopics returns topics that appear at least min times in entries.
func FrequentTopics(entries []domain.ConversationEntry, min int) map[string]bool {
	counts := map[string]int{}
	for _, e := range entries {
		if e.Topic != "" {
			counts[e.Topic]++
		}
	}
	out := map[string]bool{}
	for topic, n := range counts {
		if n >= min {
			out[topic] = true
		}
	}
	return out
}

var (
	questionStarts = []string{"how", "what", "why", "when", "where", "who", "which", "can", "could", "should", "do", "does", "is", "are", "am", "will", "would"}
	feedbackWords  = []string{"thank", "thanks", "helpful", "useful", "great advice", "not helpful", "useless", "that helped"}
)

// ClassifyMessage labels a user message as a question, feedback or a plain
// statement for the conversation log.
func ClassifyMessage(msg string) string {
	text := strings.ToLower(strings.TrimSpace(msg))
	if strings.HasSuffix(text, "?") {
		return domain.MessageQuestion
	}
	if fields := strings.Fields(text); len(fields) > 0 {
		first := strings.Trim(fields[0], ",.!")
		for _, w := range questionStarts {
			if first == w {
				return domain.MessageQuestion
			}
		}
	}
	for _, w := range feedbackWords {
		if strings.Contains(text, w) {
			return domain.MessageFeedback
		}
	}
	return domain.MessageStatement
}
