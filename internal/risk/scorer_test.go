package risk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"student-agent/internal/domain"
)

func TestScore_WorstCaseIsCapped(t *testing.T) {
	for _, incidents := range []int{4, 5, 12} {
		got := Score(domain.RiskSignals{AttendancePct: 40, AvgScore: 30, BehaviorIncidents: incidents})
		require.Equal(t, 100, got.Score)
		require.Equal(t, domain.RiskHigh, got.Label)
		require.Equal(t, []string{
			"critical attendance decline",
			"severe academic gap",
			"escalating behavior concerns",
		}, got.Reasons)
	}
}

func TestScore_HealthyStudent(t *testing.T) {
	got := Score(domain.RiskSignals{AttendancePct: 90, AvgScore: 80, BehaviorIncidents: 0})
	require.Equal(t, 0, got.Score)
	require.Equal(t, domain.RiskLow, got.Label)
	require.Empty(t, got.Reasons)
	require.NotNil(t, got.Reasons)
}

func TestScore_Bands(t *testing.T) {
	cases := []struct {
		name    string
		in      domain.RiskSignals
		score   int
		label   domain.RiskLabel
		reasons []string
	}{
		{
			name:    "attendance just under 85",
			in:      domain.RiskSignals{AttendancePct: 84.9, AvgScore: 70},
			score:   25,
			label:   domain.RiskLow,
			reasons: []string{"attendance below threshold"},
		},
		{
			name:  "exact thresholds score nothing",
			in:    domain.RiskSignals{AttendancePct: 85, AvgScore: 65, BehaviorIncidents: 1},
			score: 0,
			label: domain.RiskLow,
		},
		{
			name:    "medium cutoff",
			in:      domain.RiskSignals{AttendancePct: 80, AvgScore: 60},
			score:   45,
			label:   domain.RiskMedium,
			reasons: []string{"attendance below threshold", "academic underperformance"},
		},
		{
			name:    "high cutoff",
			in:      domain.RiskSignals{AttendancePct: 70, AvgScore: 60, BehaviorIncidents: 2},
			score:   77,
			label:   domain.RiskHigh,
			reasons: []string{"critical attendance decline", "academic underperformance", "behavior incidents rising"},
		},
		{
			name:    "behavior only",
			in:      domain.RiskSignals{AttendancePct: 95, AvgScore: 90, BehaviorIncidents: 3},
			score:   12,
			label:   domain.RiskLow,
			reasons: []string{"behavior incidents rising"},
		},
		{
			name:    "missing signals default to zero",
			in:      domain.RiskSignals{},
			score:   80,
			label:   domain.RiskHigh,
			reasons: []string{"critical attendance decline", "severe academic gap"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Score(tc.in)
			require.Equal(t, tc.score, got.Score)
			require.Equal(t, tc.label, got.Label)
			if len(tc.reasons) == 0 {
				require.Empty(t, got.Reasons)
			} else {
				require.Equal(t, tc.reasons, got.Reasons)
			}
		})
	}
}

func TestLabel_Cutoffs(t *testing.T) {
	require.Equal(t, domain.RiskLow, Label(39))
	require.Equal(t, domain.RiskMedium, Label(40))
	require.Equal(t, domain.RiskMedium, Label(69))
	require.Equal(t, domain.RiskHigh, Label(70))
}

func TestRecommendedAction(t *testing.T) {
	require.Equal(t, "Needs urgent counselor follow-up", RecommendedAction(domain.RiskHigh))
	require.Equal(t, "Monitor and mentor engagement", RecommendedAction(domain.RiskMedium))
	require.Equal(t, "Stable", RecommendedAction(domain.RiskLow))
}

func TestSummarize(t *testing.T) {
	got := Summarize([]domain.RiskSignals{
		{AttendancePct: 60, AvgScore: 40, BehaviorIncidents: 5},
		{AttendancePct: 80, AvgScore: 60},
		{AttendancePct: 95, AvgScore: 85},
		{AttendancePct: 92, AvgScore: 88, BehaviorIncidents: 1},
	})
	require.Equal(t, Summary{Total: 4, High: 1, Medium: 1, Low: 2, ActiveAlerts: 2}, got)
	require.Equal(t, Summary{}, Summarize(nil))
}

func TestRank_HighestFirstStableOnTies(t *testing.T) {
	ranked := Rank([]domain.CohortMember{
		{StudentID: "1", Name: "Asha", Signals: domain.RiskSignals{AttendancePct: 95, AvgScore: 90}},
		{StudentID: "2", Name: "Bilal", Signals: domain.RiskSignals{AttendancePct: 70, AvgScore: 45, BehaviorIncidents: 4}},
		{StudentID: "3", Name: "Chen", Signals: domain.RiskSignals{AttendancePct: 80, AvgScore: 60}},
		{StudentID: "4", Name: "Divya", Signals: domain.RiskSignals{AttendancePct: 96, AvgScore: 91}},
	})
	require.Len(t, ranked, 4)

	ids := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ids = append(ids, r.StudentID)
	}
	require.Equal(t, []string{"2", "3", "1", "4"}, ids)
	require.Equal(t, 100, ranked[0].Result.Score)
	require.Equal(t, "Needs urgent counselor follow-up", ranked[0].RecommendedAction)
	require.Equal(t, domain.RiskMedium, ranked[1].Result.Label)

	require.Equal(t, Summary{Total: 4, High: 1, Medium: 1, Low: 2, ActiveAlerts: 2}, SummarizeRanked(ranked))
	require.Empty(t, Rank(nil))
}
