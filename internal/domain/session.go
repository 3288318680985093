package domain

import "time"

// Mode is the dialogue state of a session.
type Mode string

const (
	ModeIdle      Mode = "idle"
	ModeInterview Mode = "interview_active"
	ModeDone      Mode = "interview_done"
)

// LogEntry is one turn in the in-session conversation log.
type LogEntry struct {
	UserMessage string    `json:"userMessage"`
	BotReply    string    `json:"botReply"`
	Topic       string    `json:"topic,omitempty"`
	At          time.Time `json:"at"`
}

// SessionState is owned by exactly one conversation and passed by reference
// through the session store.
type SessionState struct {
	SessionID         string     `json:"sessionId"`
	StudentID         string     `json:"studentId"`
	Mode              Mode       `json:"mode"`
	Cursor            int        `json:"cursor"`
	Answers           AnswerMap  `json:"answers,omitempty"`
	Log               []LogEntry `json:"log,omitempty"`
	AskedFollowups    []string   `json:"askedFollowups,omitempty"`
	FollowupRound     int        `json:"followupRound"`
	InterviewDeclined bool       `json:"interviewDeclined,omitempty"`
}

func NewSessionState(sessionID, studentID string) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		StudentID: studentID,
		Mode:      ModeIdle,
	}
}

// ResetInterview drops the transient interview fields and returns to idle.
func (s *SessionState) ResetInterview() {
	s.Mode = ModeIdle
	s.Cursor = 0
	s.Answers = nil
}

// AppendLog adds an entry and keeps at most limit of the newest entries.
func (s *SessionState) AppendLog(entry LogEntry, limit int) {
	s.Log = append(s.Log, entry)
	if limit > 0 && len(s.Log) > limit {
		s.Log = append([]LogEntry(nil), s.Log[len(s.Log)-limit:]...)
	}
}

// HasAskedFollowup reports whether the topic was surfaced as a follow-up in this session.
func (s *SessionState) HasAskedFollowup(topic string) bool {
	for _, t := range s.AskedFollowups {
		if t == topic {
			return true
		}
	}
	return false
}
