package guidance

import (
	"log/slog"

	"student-agent/internal/domain"
	"student-agent/internal/interview"
)

// Action tells the caller what to do with the session after a reply.
type Action int

const (
	ActionReply Action = iota
	ActionStartInterview
	ActionRestartInterview
)

const (
	helpText    = "I can help with study plans, attendance improvement, stress support, and learning goals. Ask: \"How can I improve my attendance?\""
	declineText = "Okay, no interview for now. Ask me about attendance, scores, stress, or study plans whenever you like."
)

var leadIns = map[string]string{
	domain.MessageQuestion:  "I do not have a direct answer for that yet, but I would like to know you better.",
	domain.MessageFeedback:  "Thanks for telling me.",
	domain.MessageStatement: "Thanks for sharing.",
}

// Input is everything a guidance reply may depend on. Session is updated in
// place with the follow-ups asked.
type Input struct {
	Message        string
	Signals        domain.RiskSignals
	Risk           domain.RiskResult
	Profile        domain.AnswerMap
	Session        *domain.SessionState
	FrequentTopics map[string]bool
	Settings       domain.Settings
}

type Reply struct {
	Text   string
	Topic  string
	Action Action
}

type Generator struct {
	logger *slog.Logger
}

func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Reply answers one idle-mode message. Interview phrases and an incomplete
// profile take precedence over keyword replies, which take precedence over
// follow-up questions.
func (g *Generator) Reply(in Input) Reply {
	settings := in.Settings.WithDefaults()
	if in.Session == nil {
		in.Session = &domain.SessionState{}
	}

	// Restart phrases contain the start phrase, so they are checked first.
	if domain.MatchesPhrase(in.Message, settings.RestartPhrases) {
		return Reply{Topic: TopicInterview, Action: ActionRestartInterview}
	}
	if domain.MatchesPhrase(in.Message, settings.TriggerPhrases) {
		return Reply{Topic: TopicInterview, Action: ActionStartInterview}
	}
	if domain.MatchesPhrase(in.Message, settings.CancelPhrases) {
		in.Session.InterviewDeclined = true
		return Reply{Text: declineText, Topic: TopicInterview}
	}
	if !in.Session.InterviewDeclined && !interview.IsComplete(in.Profile) {
		return Reply{Topic: TopicInterview, Action: ActionStartInterview}
	}

	if r, ok := matchDirect(in); ok {
		return r
	}

	blocked := RecentTopics(in.Session.Log, settings.RecentTopicWindow)
	for t := range in.FrequentTopics {
		blocked[t] = true
	}
	if topic, question, ok := nextFollowup(in, blocked); ok {
		g.logger.Debug("follow-up selected", "session", in.Session.SessionID, "topic", topic, "round", in.Session.FollowupRound)
		return Reply{Text: leadIns[ClassifyMessage(in.Message)] + " " + question, Topic: topic}
	}
	return Reply{Text: helpText, Topic: TopicGeneral}
}
