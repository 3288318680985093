package interview

import "student-agent/internal/domain"

const defaultAck = "Got it."

// acks holds acknowledgements per field, keyed by normalized value. The empty
// key is the field-level default.
var acks = map[domain.FieldID]map[string]string{
	domain.FieldAttemptedExam: {
		"both": "Preparing for both exams takes real effort.",
		"neet": "Thanks, NEET noted.",
		"jee":  "Thanks, JEE noted.",
		"none": "No problem, that is noted.",
	},
	domain.FieldStreamMismatch: {
		"1": "Thank you for being honest about that.",
		"0": "Good to hear you are in the stream you wanted.",
	},
	domain.FieldStreamFeelings: {
		"": "Thanks for sharing how that feels.",
	},
	domain.FieldFinancialIssues: {
		"1": "Thank you for telling me. Money pressure is real, and we can plan around it.",
		"0": "Okay, noted.",
	},
	domain.FieldWorkedAfterSchool: {
		"1": "Working while studying shows a lot of responsibility.",
		"0": "Okay, noted.",
	},
	domain.FieldWorkHistoryNote: {
		"": "That experience counts for something.",
	},
	domain.FieldGapYearReason: {
		"": "Thanks for explaining. Gap years happen for many reasons.",
	},
	domain.FieldFeelingAboutStudies: {
		"burned_out": "That sounds exhausting.",
		"stressed":   "Thanks for sharing that.",
		"motivated":  "That is great to hear.",
		"neutral":    "Okay, noted.",
	},
	domain.FieldStudyDrain: {
		"": "Knowing that helps us find a lighter way through it.",
	},
	domain.FieldDiscomfortDueToIssues: {
		"1": "I am glad you told me.",
		"0": "Good to hear.",
	},
	domain.FieldDiscomfortReason: {
		"": "Thank you for trusting me with that.",
	},
	domain.FieldConfidenceLevel: {
		"low":    "Confidence can grow with small wins.",
		"medium": "A steady place to build from.",
		"high":   "Love that confidence.",
	},
	domain.FieldPrimaryChallenge: {
		"": "Thanks, that helps me understand where to focus.",
	},
	domain.FieldGoals: {
		"": "That is a clear goal.",
	},
}

// Acknowledge returns the short reply for an accepted answer.
func Acknowledge(id domain.FieldID, value string) string {
	byValue, ok := acks[id]
	if !ok {
		return defaultAck
	}
	if msg, ok := byValue[value]; ok {
		return msg
	}
	if msg, ok := byValue[""]; ok {
		return msg
	}
	return defaultAck
}
