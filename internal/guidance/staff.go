package guidance

import (
	"strconv"
	"strings"

	"student-agent/internal/risk"
)

const (
	TopicTriage     = "triage"
	TopicCounseling = "counseling"
	TopicTutoring   = "tutoring"
)

const noStudentsText = "No student records are available yet. Add attendance, assessments, and behavior logs first."

// StaffInput is the cohort view a staff question is answered from. Ranked is
// ordered highest risk first.
type StaffInput struct {
	Message string
	Ranked  []risk.StudentRisk
	Summary risk.Summary
}

type staffRule struct {
	topic    string
	keywords []string
	reply    func(in StaffInput) string
}

var staffRules = []staffRule{
	{
		topic:    TopicTriage,
		keywords: []string{"highest", "high risk", "high-risk", "dropout", "priority"},
		reply: func(in StaffInput) string {
			if len(in.Ranked) == 0 {
				return noStudentsText
			}
			top := in.Ranked[0]
			return "Top priority student currently appears to be " + top.Name +
				" (attendance " + formatNumber(top.Signals.AttendancePct) + "%, avg score " + formatNumber(top.Signals.AvgScore) +
				", incidents " + strconv.Itoa(top.Signals.BehaviorIncidents) + "), risk " + string(top.Result.Label) +
				" (" + strconv.Itoa(top.Result.Score) + "/100). Immediate actions: counselor check-in, family contact, and targeted recovery modules."
		},
	},
	{
		topic:    TopicAttendance,
		keywords: []string{"attendance", "absent", "absentee"},
		reply: func(in StaffInput) string {
			return "Attendance-focused strategy: run daily absentee lists, assign mentors for students below 85% attendance, and pair each with offline micro-lessons. Current high-risk students: " +
				strconv.Itoa(in.Summary.High) + " of " + strconv.Itoa(in.Summary.Total) + "."
		},
	},
	{
		topic:    TopicCounseling,
		keywords: []string{"counsel", "mental", "wellness"},
		reply: func(in StaffInput) string {
			return "Mental health triage plan: prioritize students with both behavior incidents and low attendance, schedule counselor follow-up within 24-48 hours, and monitor weekly progress. Active alerts: " +
				strconv.Itoa(in.Summary.ActiveAlerts) + "."
		},
	},
	{
		topic:    TopicTutoring,
		keywords: []string{"tutor", "hub", "community"},
		reply: func(StaffInput) string {
			return "Community hub recommendation: reserve tutoring slots first for high-risk cases, then medium-risk students with math or literacy gaps. Use hub digital resources for students with unstable home connectivity."
		},
	},
}

// StaffReply answers a counselor or teacher question about the cohort.
func StaffReply(in StaffInput) Reply {
	text := strings.ToLower(in.Message)
	for _, rule := range staffRules {
		if containsAny(text, rule.keywords) {
			return Reply{Text: rule.reply(in), Topic: rule.topic}
		}
	}
	return Reply{
		Text: "I can help with risk triage, attendance interventions, counseling prioritization, and tutoring hub coordination. Current status: " +
			strconv.Itoa(in.Summary.High) + " high-risk students, " + strconv.Itoa(in.Summary.ActiveAlerts) + " active alerts.",
		Topic: TopicGeneral,
	}
}
