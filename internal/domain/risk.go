package domain

// RiskSignals are the pre-aggregated behavioral signals for one student.
type RiskSignals struct {
	AttendancePct     float64 `json:"attendancePct"`
	AvgScore          float64 `json:"avgScore"`
	CompletionPct     float64 `json:"completionPct"`
	MasteryScore      float64 `json:"masteryScore"`
	BehaviorIncidents int     `json:"behaviorIncidents"`
}

type RiskLabel string

const (
	RiskLow    RiskLabel = "Low"
	RiskMedium RiskLabel = "Medium"
	RiskHigh   RiskLabel = "High"
)

// RiskResult is derived per request and never stored.
type RiskResult struct {
	Score   int       `json:"score"`
	Label   RiskLabel `json:"label"`
	Reasons []string  `json:"reasons"`
}

// CohortMember is one student as listed for staff.
type CohortMember struct {
	StudentID  string      `json:"studentId"`
	Name       string      `json:"fullName"`
	GradeLevel string      `json:"gradeLevel,omitempty"`
	Signals    RiskSignals `json:"signals"`
}
