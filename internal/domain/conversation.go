package domain

import "time"

// Message types recorded with each persisted conversation entry.
const (
	MessageQuestion  = "question"
	MessageStatement = "statement"
	MessageFeedback  = "feedback"
)

// ConversationEntry is a single persisted conversation turn.
type ConversationEntry struct {
	PK          string
	SK          string
	StudentID   string
	SessionID   string
	UserMessage string
	BotReply    string
	Topic       string
	MessageType string
	CreatedAt   time.Time
	TTL         int64
}
