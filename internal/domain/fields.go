package domain

// FieldID identifies one interview field. Stored profiles use it as the attribute name.
type FieldID string

const (
	FieldAttemptedExam         FieldID = "attempted_exam"
	FieldTargetStream          FieldID = "target_stream"
	FieldCurrentStream         FieldID = "current_stream"
	FieldStreamMismatch        FieldID = "stream_mismatch"
	FieldFinancialIssues       FieldID = "financial_issues"
	FieldWorkedAfterSchool     FieldID = "worked_after_school"
	FieldWorkHistoryNote       FieldID = "work_history_note"
	FieldStudyGapMonths        FieldID = "study_gap_months"
	FieldGapYears              FieldID = "gap_years"
	FieldGapYearReason         FieldID = "gap_year_reason"
	FieldFeelingAboutStudies   FieldID = "feeling_about_studies"
	FieldDiscomfortDueToIssues FieldID = "discomfort_due_to_issues"
	FieldDiscomfortReason      FieldID = "discomfort_reason"
	FieldConfidenceLevel       FieldID = "confidence_level"
	FieldPrimaryChallenge      FieldID = "primary_challenge"
	FieldGoals                 FieldID = "goals"

	// Conversational-only fields. Never persisted.
	FieldStreamFeelings FieldID = "stream_feelings"
	FieldStudyDrain     FieldID = "study_drain"
)

// FieldKind selects the parser strategy for a field.
type FieldKind int

const (
	KindEnum FieldKind = iota + 1
	KindYesNo
	KindBoundedInt
	KindFreeText
)

func (k FieldKind) String() string {
	switch k {
	case KindEnum:
		return "enum"
	case KindYesNo:
		return "yes_no"
	case KindBoundedInt:
		return "bounded_int"
	case KindFreeText:
		return "free_text"
	default:
		return "unknown"
	}
}

// EnumOption is one allowed value of an enum field. Match holds keyword groups;
// the option matches when every keyword of any one group is contained in the text.
type EnumOption struct {
	Value string
	Label string
	Match [][]string
}

// Field describes how an answer is validated and normalized.
type Field struct {
	ID       FieldID
	Kind     FieldKind
	Options  []EnumOption // enum only, in match priority order
	Fallback string       // enum only
	Max      int          // bounded_int only
}

// QuestionSpec is one question of a flow. Store=false marks a conversational-only
// follow-up whose answer is never persisted.
type QuestionSpec struct {
	Field  FieldID
	Prompt string
	Store  bool
}

// FlowSpec is the ordered question sequence derived from an AnswerMap.
type FlowSpec []QuestionSpec

// AnswerMap maps a field to its normalized value.
type AnswerMap map[FieldID]string

// Has reports whether the field holds a non-empty value.
func (a AnswerMap) Has(id FieldID) bool {
	return a[id] != ""
}

func (a AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
