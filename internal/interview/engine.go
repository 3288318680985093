package interview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"student-agent/internal/domain"
)

var (
	// ErrPersistence wraps a failed profile upsert at interview completion.
	ErrPersistence = errors.New("interview: profile persistence failed")
	ErrNotActive   = errors.New("interview: no interview in progress")
)

const (
	introFresh   = "Let's build your student profile. You can say \"stop interview\" at any time."
	introResume  = "Welcome back, let's pick up where we left off."
	alreadyDone  = "Your profile is already complete. Say \"restart interview\" if you want to update it."
	completeText = "That completes your profile. Thank you! Ask me about attendance, scores, stress, or study plans any time."
	cancelText   = "Okay, I have stopped the interview and nothing was saved. Say \"start interview\" whenever you want to continue."
)

// ProfileWriter persists a finalized profile.
type ProfileWriter interface {
	UpsertProfile(ctx context.Context, studentID string, answers domain.AnswerMap) error
}

// Turn is the outcome of one interview step.
type Turn struct {
	Reply        string
	Done         bool
	NextQuestion string
	Field        domain.FieldID
	Recognized   string
	Accepted     bool
}

// Engine drives the interview transitions of a SessionState.
type Engine struct {
	profiles ProfileWriter
	logger   *slog.Logger
}

func NewEngine(p ProfileWriter, logger *slog.Logger) (*Engine, error) {
	if p == nil {
		return nil, errors.New("interview: profile writer must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{profiles: p, logger: logger}, nil
}

// Begin activates the interview. Stored answers in seed are kept, so a partial
// profile resumes at its first unanswered question. A complete profile leaves
// the session idle and returns a Done turn.
func (e *Engine) Begin(state *domain.SessionState, seed domain.AnswerMap) Turn {
	answers := Seed(seed)
	flow := BuildFlow(answers)
	cursor := ResumeCursor(flow, answers)
	if cursor >= len(flow) {
		state.ResetInterview()
		return Turn{Reply: alreadyDone, Done: true}
	}

	state.Mode = domain.ModeInterview
	state.Cursor = cursor
	state.Answers = answers
	state.InterviewDeclined = false

	intro := introFresh
	if len(answers) > 0 {
		intro = introResume
	}
	q := flow[cursor]
	e.logger.Debug("interview started", "session", state.SessionID, "cursor", cursor, "seeded", len(answers))
	return Turn{
		Reply:        intro + " " + q.Prompt,
		NextQuestion: q.Prompt,
		Field:        q.Field,
	}
}

// Answer applies one message to the current question. A rejected answer
// re-asks the same question with a clarification and leaves the cursor alone.
// When the last question is answered the profile is persisted; if that fails
// the state is left exactly as it was and the error wraps ErrPersistence.
func (e *Engine) Answer(ctx context.Context, state *domain.SessionState, message string) (Turn, error) {
	if state.Mode != domain.ModeInterview {
		return Turn{}, ErrNotActive
	}

	flow := BuildFlow(state.Answers)
	cursor := state.Cursor
	if cursor < 0 || cursor >= len(flow) {
		cursor = ResumeCursor(flow, state.Answers)
		if cursor >= len(flow) {
			return e.complete(ctx, state, state.Answers, "")
		}
	}
	q := flow[cursor]

	parsed := Parse(q.Field, message)
	if !parsed.OK {
		return Turn{
			Reply:        parsed.Clarification + " " + q.Prompt,
			NextQuestion: q.Prompt,
			Field:        q.Field,
		}, nil
	}

	answers := state.Answers.Clone()
	if q.Store {
		answers[q.Field] = parsed.Value
	}
	ack := Acknowledge(q.Field, parsed.Value)

	next := BuildFlow(answers)
	cursor = NextCursor(next, answers, cursor)
	if cursor >= len(next) {
		turn, err := e.complete(ctx, state, answers, ack)
		if err != nil {
			return Turn{}, err
		}
		turn.Field = q.Field
		turn.Recognized = parsed.Value
		return turn, nil
	}

	state.Answers = answers
	state.Cursor = cursor
	return Turn{
		Reply:        ack + " " + next[cursor].Prompt,
		NextQuestion: next[cursor].Prompt,
		Field:        q.Field,
		Recognized:   parsed.Value,
		Accepted:     true,
	}, nil
}

// Cancel abandons the interview without persisting anything.
func (e *Engine) Cancel(state *domain.SessionState) string {
	state.ResetInterview()
	state.InterviewDeclined = true
	return cancelText
}

// CurrentQuestion returns the question the session is waiting on.
func CurrentQuestion(state *domain.SessionState) (domain.QuestionSpec, bool) {
	if state == nil || state.Mode != domain.ModeInterview {
		return domain.QuestionSpec{}, false
	}
	flow := BuildFlow(state.Answers)
	if state.Cursor < 0 || state.Cursor >= len(flow) {
		return domain.QuestionSpec{}, false
	}
	return flow[state.Cursor], true
}

func (e *Engine) complete(ctx context.Context, state *domain.SessionState, answers domain.AnswerMap, ack string) (Turn, error) {
	profile := Finalize(answers)
	if err := e.profiles.UpsertProfile(ctx, state.StudentID, profile); err != nil {
		e.logger.Error("interview profile upsert failed", "session", state.SessionID, "err", err)
		return Turn{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	state.ResetInterview()
	state.Mode = domain.ModeDone
	e.logger.Info("interview completed", "session", state.SessionID, "student", state.StudentID)
	return Turn{
		Reply:    strings.TrimSpace(ack + " " + completeText),
		Done:     true,
		Accepted: true,
	}, nil
}
