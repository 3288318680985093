package guidance

import (
	"strconv"
	"strings"

	"student-agent/internal/domain"
)

type followup struct {
	topic       string
	exploratory bool
	eligible    func(in Input) bool
	variants    []string
}

// followups is ranked: profile gaps, then performance, then profile context,
// then the exploratory pool.
var followups = []followup{
	{
		topic:    TopicChallenge,
		eligible: missing(domain.FieldPrimaryChallenge),
		variants: []string{
			"What feels like your biggest study challenge right now?",
			"If you could fix one thing about how studying is going, what would it be?",
		},
	},
	{
		topic:    TopicGoals,
		eligible: missing(domain.FieldGoals),
		variants: []string{
			"What is your main goal for the next three months?",
			"Where would you like to be by the end of this term?",
		},
	},
	{
		topic:    TopicConfidence,
		eligible: missing(domain.FieldConfidenceLevel),
		variants: []string{
			"How confident do you feel about your studies right now: low, medium, or high?",
			"How sure do you feel about keeping up this term: low, medium, or high?",
		},
	},
	{
		topic:    TopicAttendance,
		eligible: func(in Input) bool { return in.Signals.AttendancePct < 85 },
		variants: []string{
			"Your attendance is at {attendance}%. What makes it hard to get to class some days?",
			"I noticed attendance is at {attendance}%. Is travel, health, or something else getting in the way?",
		},
	},
	{
		topic:    TopicScores,
		eligible: func(in Input) bool { return in.Signals.AvgScore < 65 },
		variants: []string{
			"Your average is {score} right now. Which subject would you like to work on first?",
			"With an average of {score}, which topic feels the most confusing?",
		},
	},
	{
		topic:    TopicStream,
		eligible: profileIs(domain.FieldStreamMismatch, "1"),
		variants: []string{
			"You mentioned studying in a different stream than you hoped. How is that going lately?",
			"How are you finding your current stream these days?",
		},
	},
	{
		topic:    TopicFinance,
		eligible: profileIs(domain.FieldFinancialIssues, "1"),
		variants: []string{
			"You mentioned money pressure earlier. Would it help to hear about scholarships or free study resources?",
			"Are financial worries still affecting your study time?",
		},
	},
	{
		topic: TopicGap,
		eligible: func(in Input) bool {
			return profileInt(in.Profile, domain.FieldGapYears) > 0 || profileInt(in.Profile, domain.FieldStudyGapMonths) >= 6
		},
		variants: []string{
			"Coming back after a break takes effort. Which topics feel rusty since returning?",
			"Since your study break, what has been the hardest thing to pick back up?",
		},
	},
	{
		topic: TopicWellbeing,
		eligible: func(in Input) bool {
			f := in.Profile[domain.FieldFeelingAboutStudies]
			return f == "stressed" || f == "burned_out" || in.Profile[domain.FieldDiscomfortDueToIssues] == "1"
		},
		variants: []string{
			"How have you been feeling this week, honestly?",
			"Is anything outside of class making studying harder right now?",
		},
	},
	{topic: TopicInterests, exploratory: true, variants: []string{
		"What do you enjoy doing outside of studies?",
		"What is something you have been curious about lately?",
	}},
	{topic: TopicStudyTime, exploratory: true, variants: []string{
		"What time of day do you study best?",
		"Do you focus better in the morning or at night?",
	}},
	{topic: TopicFavoriteSubject, exploratory: true, variants: []string{
		"Which subject do you enjoy the most?",
		"Which class makes time go fastest for you?",
	}},
	{topic: TopicSupport, exploratory: true, variants: []string{
		"Who do you usually go to when you are stuck on a problem?",
		"Do you have someone at home or school who helps with studies?",
	}},
	{topic: TopicStudyBuddy, exploratory: true, variants: []string{
		"Would studying with a friend or group help you stay on track?",
		"Do you ever study with classmates?",
	}},
	{topic: TopicCareer, exploratory: true, variants: []string{
		"What kind of work do you see yourself doing in the future?",
		"Is there a career you are curious about?",
	}},
	{topic: TopicWeeklyWin, exploratory: true, variants: []string{
		"What is one thing that went well for you this week?",
		"What is a small win from the last few days?",
	}},
}

// nextFollowup picks the first eligible, unblocked follow-up. Exploratory
// topics are also skipped once asked in this session; when no exploratory
// topic is left to ask the asked ones are cleared and the phrasing round
// advances.
func nextFollowup(in Input, blocked map[string]bool) (topic, question string, ok bool) {
	s := in.Session
	if poolExhausted(s, blocked) {
		resetPool(s)
	}
	for _, f := range followups {
		if blocked[f.topic] {
			continue
		}
		if f.exploratory {
			if s.HasAskedFollowup(f.topic) {
				continue
			}
		} else if !f.eligible(in) {
			continue
		}
		markAsked(s, f.topic)
		return f.topic, phrase(f, in), true
	}
	return "", "", false
}

func phrase(f followup, in Input) string {
	v := f.variants[in.Session.FollowupRound%len(f.variants)]
	return strings.NewReplacer(
		"{attendance}", formatNumber(in.Signals.AttendancePct),
		"{score}", formatNumber(in.Signals.AvgScore),
	).Replace(v)
}

// poolExhausted reports whether every exploratory topic is either asked or
// blocked, and a reset would free at least one unblocked topic.
func poolExhausted(s *domain.SessionState, blocked map[string]bool) bool {
	reusable := false
	for _, f := range followups {
		if !f.exploratory || blocked[f.topic] {
			continue
		}
		if !s.HasAskedFollowup(f.topic) {
			return false
		}
		reusable = true
	}
	return reusable
}

func resetPool(s *domain.SessionState) {
	kept := s.AskedFollowups[:0]
	for _, t := range s.AskedFollowups {
		if !isExploratory(t) {
			kept = append(kept, t)
		}
	}
	s.AskedFollowups = kept
	s.FollowupRound++
}

func markAsked(s *domain.SessionState, topic string) {
	if !s.HasAskedFollowup(topic) {
		s.AskedFollowups = append(s.AskedFollowups, topic)
	}
}

func isExploratory(topic string) bool {
	for _, f := range followups {
		if f.topic == topic {
			return f.exploratory
		}
	}
	return false
}

func missing(id domain.FieldID) func(in Input) bool {
	return func(in Input) bool { return !in.Profile.Has(id) }
}

func profileIs(id domain.FieldID, value string) func(in Input) bool {
	return func(in Input) bool { return in.Profile[id] == value }
}

func profileInt(a domain.AnswerMap, id domain.FieldID) int {
	n, err := strconv.Atoi(a[id])
	if err != nil {
		return 0
	}
	return n
}
