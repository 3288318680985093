// Package risk converts pre-aggregated behavioral signals into a bounded,
// labeled dropout risk score.
package risk

import "student-agent/internal/domain"

const (
	maxScore     = 100
	highCutoff   = 70
	mediumCutoff = 40
)

// band awards points to the first threshold a value falls under.
type band struct {
	hit    func(s domain.RiskSignals) bool
	points int
	reason string
}

// bands are grouped per signal in the order attendance, score, behavior. Within
// a group only the first matching band counts.
var bands = [][]band{
	{
		{hit: func(s domain.RiskSignals) bool { return s.AttendancePct < 75 }, points: 45, reason: "critical attendance decline"},
		{hit: func(s domain.RiskSignals) bool { return s.AttendancePct < 85 }, points: 25, reason: "attendance below threshold"},
	},
	{
		{hit: func(s domain.RiskSignals) bool { return s.AvgScore < 50 }, points: 35, reason: "severe academic gap"},
		{hit: func(s domain.RiskSignals) bool { return s.AvgScore < 65 }, points: 20, reason: "academic underperformance"},
	},
	{
		{hit: func(s domain.RiskSignals) bool { return s.BehaviorIncidents >= 4 }, points: 25, reason: "escalating behavior concerns"},
		{hit: func(s domain.RiskSignals) bool { return s.BehaviorIncidents >= 2 }, points: 12, reason: "behavior incidents rising"},
	},
}

// Score computes the risk result for one student. It is pure.
func Score(s domain.RiskSignals) domain.RiskResult {
	total := 0
	reasons := []string{}
	for _, group := range bands {
		for _, b := range group {
			if b.hit(s) {
				total += b.points
				reasons = append(reasons, b.reason)
				break
			}
		}
	}
	if total > maxScore {
		total = maxScore
	}
	if total < 0 {
		total = 0
	}
	return domain.RiskResult{Score: total, Label: Label(total), Reasons: reasons}
}

// Label maps a score to its band label.
func Label(score int) domain.RiskLabel {
	switch {
	case score >= highCutoff:
		return domain.RiskHigh
	case score >= mediumCutoff:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// RecommendedAction is the staff-facing follow-up for a label.
func RecommendedAction(label domain.RiskLabel) string {
	switch label {
	case domain.RiskHigh:
		return "Needs urgent counselor follow-up"
	case domain.RiskMedium:
		return "Monitor and mentor engagement"
	default:
		return "Stable"
	}
}
