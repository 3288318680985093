package guidance

import (
	"math"
	"strconv"
	"strings"

	"student-agent/internal/domain"
)

type directRule struct {
	topic    string
	keywords []string
	reply    func(in Input) string
	reflect  string
}

// directRules are checked in order; the first rule with a matching keyword wins.
var directRules = []directRule{
	{
		topic:    TopicRisk,
		keywords: []string{"risk", "dropout", "drop out", "am i failing"},
		reply: func(in Input) string {
			msg := "Your current risk level is " + string(in.Risk.Label) + " (" + strconv.Itoa(in.Risk.Score) + "/100)."
			if len(in.Risk.Reasons) == 0 {
				return msg + " No warning signs stand out right now."
			}
			return msg + " Main factors: " + strings.Join(in.Risk.Reasons, ", ") + "."
		},
		reflect: "Would you like a small plan for this week?",
	},
	{
		topic:    TopicAttendance,
		keywords: []string{"attendance", "absent", "miss class", "missing class", "skip class", "bunk"},
		reply: func(in Input) string {
			pct := formatNumber(in.Signals.AttendancePct)
			if in.Signals.AttendancePct < 85 {
				return "Your attendance is below 85% (currently " + pct + "%). Try setting a daily reminder and review one micro-lesson each day you miss class."
			}
			return "Your attendance is on track at " + pct + "%. Keep the momentum by maintaining a consistent schedule."
		},
		reflect: "What usually gets in the way of getting to class?",
	},
	{
		topic:    TopicScores,
		keywords: []string{"score", "grade", "marks", "exam", "result"},
		reply: func(in Input) string {
			avg := formatNumber(in.Signals.AvgScore)
			if in.Signals.AvgScore < 65 {
				return "Your current average is " + avg + ", which suggests you may need extra support. Focus on your weakest subject first and complete 20-30 minutes of practice daily."
			}
			return "Your score trend is stable at an average of " + avg + ". Continue targeted practice and weekly revision to improve mastery."
		},
		reflect: "Which subject feels the weakest right now?",
	},
	{
		topic:    TopicStress,
		keywords: []string{"stress", "mental", "anxious", "anxiety", "overwhelm", "panic", "worried"},
		reply: func(in Input) string {
			msg := "If you feel stressed, break study time into short sessions, take 5-minute pauses, and speak to a counselor or trusted adult for support."
			if in.Profile[domain.FieldFeelingAboutStudies] == "burned_out" {
				msg += " You mentioned feeling burned out, so rest is part of the plan too."
			}
			return msg
		},
		reflect: "What is weighing on you the most right now?",
	},
	{
		topic:    TopicSleep,
		keywords: []string{"sleep", "tired", "insomnia", "bedtime"},
		reply: func(Input) string {
			return "Aim for 7 to 9 hours of sleep and keep the same bedtime on school nights. Putting your phone away 30 minutes before bed helps."
		},
		reflect: "How many hours are you sleeping on most nights?",
	},
	{
		topic:    TopicMotivation,
		keywords: []string{"motivat", "lazy", "procrastinat", "give up", "bored", "no energy"},
		reply: func(in Input) string {
			msg := "You have completed " + formatNumber(in.Signals.CompletionPct) + "% of your modules so far. Pick one short task you can finish today and build from there."
			if goal := strings.TrimSpace(in.Profile[domain.FieldGoals]); goal != "" {
				msg += " Keep your goal in mind: " + goal + "."
			}
			return msg
		},
		reflect: "What is one small win you could aim for today?",
	},
	{
		topic:    TopicStudyPlan,
		keywords: []string{"plan", "study", "schedule", "routine", "timetable"},
		reply: func(Input) string {
			return "Suggested plan: 1) 25 minutes focused practice, 2) 10-question quiz, 3) review mistakes, 4) ask for help on difficult topics."
		},
		reflect: "How much time can you set aside each day?",
	},
	{
		topic:    TopicHelp,
		keywords: []string{"help", "what can you do"},
		reply:    func(Input) string { return helpText },
	},
}

var yesNoOpeners = []string{"am i ", "is my ", "are my ", "is it ", "should i ", "do i ", "does my ", "can i ", "will i "}

func matchDirect(in Input) (Reply, bool) {
	text := strings.ToLower(in.Message)
	for _, rule := range directRules {
		if !containsAny(text, rule.keywords) {
			continue
		}
		msg := rule.reply(in)
		if rule.reflect != "" && isYesNoQuestion(text) {
			msg += " " + rule.reflect
		}
		return Reply{Text: msg, Topic: rule.topic}, true
	}
	return Reply{}, false
}

func isYesNoQuestion(text string) bool {
	text = strings.TrimSpace(text)
	for _, o := range yesNoOpeners {
		if strings.HasPrefix(text, o) {
			return true
		}
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// formatNumber renders v with at most one decimal, so 60 prints as "60".
func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}
