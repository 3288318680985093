package risk

import (
	"cmp"
	"slices"

	"student-agent/internal/domain"
)

// StudentRisk is a scored cohort member.
type StudentRisk struct {
	domain.CohortMember
	Result            domain.RiskResult `json:"risk"`
	RecommendedAction string            `json:"recommendedAction"`
}

// Rank scores every member and orders them highest risk first. Equal scores
// keep their input order.
func Rank(members []domain.CohortMember) []StudentRisk {
	out := make([]StudentRisk, 0, len(members))
	for _, m := range members {
		r := Score(m.Signals)
		out = append(out, StudentRisk{CohortMember: m, Result: r, RecommendedAction: RecommendedAction(r.Label)})
	}
	slices.SortStableFunc(out, func(a, b StudentRisk) int {
		return cmp.Compare(b.Result.Score, a.Result.Score)
	})
	return out
}

// SummarizeRanked counts an already scored cohort.
func SummarizeRanked(ranked []StudentRisk) Summary {
	signals := make([]domain.RiskSignals, 0, len(ranked))
	for _, r := range ranked {
		signals = append(signals, r.Signals)
	}
	return Summarize(signals)
}
