package interview

import (
	"strconv"

	"student-agent/internal/domain"
)

// step is one entry of the question plan. when gates the question on answers
// to earlier fields only, so the traversed prefix of a flow never changes.
type step struct {
	field  domain.FieldID
	store  bool
	prompt func(a domain.AnswerMap) string
	when   func(a domain.AnswerMap) bool
}

var plan = []step{
	{field: domain.FieldAttemptedExam, store: true, prompt: fixed("Have you attempted JEE, NEET, both, or neither?")},
	{field: domain.FieldTargetStream, store: true, prompt: func(a domain.AnswerMap) string {
		switch a[domain.FieldAttemptedExam] {
		case "jee", "neet", "both":
			return "Which stream were you aiming for with that exam?"
		}
		return "Which stream were you aiming for originally?"
	}},
	{field: domain.FieldCurrentStream, store: true, prompt: fixed("Which stream are you currently in now?")},
	{field: domain.FieldStreamMismatch, store: true, prompt: fixed("Are you in a different stream than you hoped for? Say yes or no.")},
	{
		field:  domain.FieldStreamFeelings,
		prompt: fixed("That can be hard. How do you feel about studying in a stream you did not choose?"),
		when:   equals(domain.FieldStreamMismatch, "1"),
	},
	{field: domain.FieldFinancialIssues, store: true, prompt: fixed("Do financial issues currently affect your studies? Say yes or no.")},
	{field: domain.FieldWorkedAfterSchool, store: true, prompt: fixed("Did you work after school or during your study break? Say yes or no.")},
	{
		field:  domain.FieldWorkHistoryNote,
		store:  true,
		prompt: fixed("What kind of work did you do?"),
		when:   equals(domain.FieldWorkedAfterSchool, "1"),
	},
	{field: domain.FieldStudyGapMonths, store: true, prompt: fixed("How many months were you away from regular study?")},
	{field: domain.FieldGapYears, store: true, prompt: func(a domain.AnswerMap) string {
		if a.Has(domain.FieldStudyGapMonths) && intAnswer(a, domain.FieldStudyGapMonths) == 0 {
			return "Good, no long break from study. Do you have any gap years in your education overall? A number is fine, even 0."
		}
		return "How many total gap years do you have in education?"
	}},
	{
		field:  domain.FieldGapYearReason,
		store:  true,
		prompt: fixed("What is the main reason for your gap years?"),
		when: func(a domain.AnswerMap) bool {
			return intAnswer(a, domain.FieldGapYears) > 0 || intAnswer(a, domain.FieldStudyGapMonths) >= 6
		},
	},
	{field: domain.FieldFeelingAboutStudies, store: true, prompt: fixed("How are you feeling about studies right now: motivated, neutral, stressed, or burned out?")},
	{
		field:  domain.FieldStudyDrain,
		prompt: fixed("I am sorry it feels heavy right now. What part of studying drains you the most?"),
		when: func(a domain.AnswerMap) bool {
			v := a[domain.FieldFeelingAboutStudies]
			return v == "stressed" || v == "burned_out"
		},
	},
	{field: domain.FieldDiscomfortDueToIssues, store: true, prompt: fixed("Are you feeling uncomfortable due to personal or academic issues? Say yes or no.")},
	{
		field:  domain.FieldDiscomfortReason,
		store:  true,
		prompt: fixed("What is causing this discomfort?"),
		when:   equals(domain.FieldDiscomfortDueToIssues, "1"),
	},
	{field: domain.FieldConfidenceLevel, store: true, prompt: fixed("How confident do you feel now: low, medium, or high?")},
	{field: domain.FieldPrimaryChallenge, store: true, prompt: fixed("What is your biggest study challenge currently?")},
	{field: domain.FieldGoals, store: true, prompt: fixed("What is your main goal for the next three months?")},
}

// BuildFlow derives the question sequence from the answers collected so far.
// It never mutates answers; equal inputs give equal flows.
func BuildFlow(answers domain.AnswerMap) domain.FlowSpec {
	flow := make(domain.FlowSpec, 0, len(plan))
	for _, s := range plan {
		if s.when != nil && !s.when(answers) {
			continue
		}
		flow = append(flow, domain.QuestionSpec{
			Field:  s.field,
			Prompt: s.prompt(answers),
			Store:  s.store,
		})
	}
	return flow
}

// ResumeCursor is the index of the first stored question still unanswered.
// Conversational-only fields ahead of it are skipped. It returns len(flow) when
// nothing is left to ask.
func ResumeCursor(flow domain.FlowSpec, answers domain.AnswerMap) int {
	for i, q := range flow {
		if q.Store && !answers.Has(q.Field) {
			return i
		}
	}
	return len(flow)
}

// NextCursor is the first index after from that still needs an answer.
func NextCursor(flow domain.FlowSpec, answers domain.AnswerMap, from int) int {
	for i := from + 1; i < len(flow); i++ {
		if flow[i].Store && answers.Has(flow[i].Field) {
			continue
		}
		return i
	}
	return len(flow)
}

// IsComplete reports whether a stored profile answers every question its flow asks.
func IsComplete(profile domain.AnswerMap) bool {
	seeded := Seed(profile)
	flow := BuildFlow(seeded)
	return ResumeCursor(flow, seeded) == len(flow)
}

func fixed(text string) func(domain.AnswerMap) string {
	return func(domain.AnswerMap) string { return text }
}

func equals(id domain.FieldID, value string) func(domain.AnswerMap) bool {
	return func(a domain.AnswerMap) bool { return a[id] == value }
}

func intAnswer(a domain.AnswerMap, id domain.FieldID) int {
	n, err := strconv.Atoi(a[id])
	if err != nil {
		return 0
	}
	return n
}
