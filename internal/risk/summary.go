package risk

import "student-agent/internal/domain"

// Summary counts a cohort by label. ActiveAlerts covers every student that is
// not Low.
type Summary struct {
	Total        int `json:"totalStudents"`
	High         int `json:"highRisk"`
	Medium       int `json:"mediumRisk"`
	Low          int `json:"lowRisk"`
	ActiveAlerts int `json:"activeAlerts"`
}

func Summarize(cohort []domain.RiskSignals) Summary {
	var out Summary
	for _, s := range cohort {
		out.Total++
		switch Score(s).Label {
		case domain.RiskHigh:
			out.High++
			out.ActiveAlerts++
		case domain.RiskMedium:
			out.Medium++
			out.ActiveAlerts++
		default:
			out.Low++
		}
	}
	return out
}
