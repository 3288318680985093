package guidance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"student-agent/internal/domain"
	"student-agent/internal/risk"
)

func staffCohort() StaffInput {
	ranked := risk.Rank([]domain.CohortMember{
		{StudentID: "1", Name: "Asha Verma", Signals: domain.RiskSignals{AttendancePct: 96, AvgScore: 88}},
		{StudentID: "2", Name: "Ravi Kumar", Signals: domain.RiskSignals{AttendancePct: 61.26, AvgScore: 44, BehaviorIncidents: 4}},
		{StudentID: "3", Name: "Meera Das", Signals: domain.RiskSignals{AttendancePct: 82, AvgScore: 63}},
	})
	return StaffInput{Ranked: ranked, Summary: risk.SummarizeRanked(ranked)}
}

func TestStaffReply_TopPriorityStudent(t *testing.T) {
	in := staffCohort()
	in.Message = "Who is at the highest dropout risk?"

	got := StaffReply(in)
	require.Equal(t, TopicTriage, got.Topic)
	require.Contains(t, got.Text, "Ravi Kumar")
	require.Contains(t, got.Text, "attendance 61.3%")
	require.Contains(t, got.Text, "avg score 44")
	require.Contains(t, got.Text, "incidents 4")
	require.Contains(t, got.Text, "High (100/100)")
}

func TestStaffReply_NoStudents(t *testing.T) {
	got := StaffReply(StaffInput{Message: "show high risk students"})
	require.Equal(t, TopicTriage, got.Topic)
	require.Equal(t, noStudentsText, got.Text)
}

func TestStaffReply_CohortCounts(t *testing.T) {
	cases := []struct {
		msg   string
		topic string
		want  string
	}{
		{msg: "attendance plan for next week", topic: TopicAttendance, want: "Current high-risk students: 1 of 3."},
		{msg: "who needs counseling first", topic: TopicCounseling, want: "Active alerts: 2."},
		{msg: "how should we use the tutoring hub", topic: TopicTutoring, want: "reserve tutoring slots first"},
		{msg: "hello", topic: TopicGeneral, want: "1 high-risk students, 2 active alerts."},
	}
	for _, tc := range cases {
		t.Run(tc.msg, func(t *testing.T) {
			in := staffCohort()
			in.Message = tc.msg
			got := StaffReply(in)
			require.Equal(t, tc.topic, got.Topic)
			require.Contains(t, got.Text, tc.want)
		})
	}
}
