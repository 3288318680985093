package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"student-agent/internal/domain"
	"student-agent/internal/guidance"
	"student-agent/internal/interview"
	"student-agent/internal/risk"
)

const (
	defaultMaxMessage = 500
	modeNormal        = "normal"
	modeInterview     = "interview"
	alreadyInterview  = "We are already in the middle of your profile interview."
)

type SettingsLoader interface {
	LoadSettings(ctx context.Context) (domain.Settings, error)
}

type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*domain.SessionState, error)
	Save(ctx context.Context, state *domain.SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

type ProfileStore interface {
	LoadProfile(ctx context.Context, studentID string) (domain.AnswerMap, error)
	UpsertProfile(ctx context.Context, studentID string, answers domain.AnswerMap) error
}

type ConversationLog interface {
	AppendConversation(ctx context.Context, entry domain.ConversationEntry) error
	RecentConversation(ctx context.Context, studentID string, limit int) ([]domain.ConversationEntry, error)
	ConversationTurns(ctx context.Context, studentID string) (int, error)
}

type SignalSource interface {
	Signals(ctx context.Context, studentID string) (domain.RiskSignals, error)
	Cohort(ctx context.Context) ([]domain.CohortMember, error)
}

// ChatService routes each message either to the interview engine or to the
// guidance generator, and persists the session between turns.
type ChatService struct {
	settingsSrc   SettingsLoader
	sessions      SessionStore
	profiles      ProfileStore
	conversations ConversationLog
	signals       SignalSource
	engine        *interview.Engine
	generator     *guidance.Generator
	maxMessageLen int
	logger        *slog.Logger

	cacheMu     sync.RWMutex
	cacheLoaded bool
	settings    domain.Settings
}

type ChatInput struct {
	StudentID string
	SessionID string
	Message   string
}

type ChatOutput struct {
	Reply        string
	Mode         string
	Done         bool
	NextQuestion string
	SessionID    string
}

type turnResult struct {
	reply        string
	topic        string
	done         bool
	nextQuestion string
}

func NewChatService(
	settings SettingsLoader,
	sessions SessionStore,
	profiles ProfileStore,
	conversations ConversationLog,
	signals SignalSource,
	maxMessageLen int,
	logger *slog.Logger,
) (*ChatService, error) {
	if settings == nil {
		return nil, errors.New("usecase: settings loader must not be nil")
	}
	if sessions == nil {
		return nil, errors.New("usecase: session store must not be nil")
	}
	if profiles == nil {
		return nil, errors.New("usecase: profile store must not be nil")
	}
	if conversations == nil {
		return nil, errors.New("usecase: conversation log must not be nil")
	}
	if signals == nil {
		return nil, errors.New("usecase: signal source must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessage
	}
	engine, err := interview.NewEngine(profiles, logger)
	if err != nil {
		return nil, err
	}
	return &ChatService{
		settingsSrc:   settings,
		sessions:      sessions,
		profiles:      profiles,
		conversations: conversations,
		signals:       signals,
		engine:        engine,
		generator:     guidance.NewGenerator(logger),
		maxMessageLen: maxMessageLen,
		logger:        logger,
	}, nil
}

// Chat handles one user message for a session. An empty SessionID starts a
// new session.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	studentID := strings.TrimSpace(in.StudentID)
	message := strings.TrimSpace(in.Message)
	if studentID == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_student_id", nil)
	}
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.maxMessageLen {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	settings, err := s.ensureSettings(ctx)
	if err != nil {
		return ChatOutput{}, newError(ErrorInternal, "settings_load_error", err)
	}

	state, err := s.loadSession(ctx, strings.TrimSpace(in.SessionID), studentID)
	if err != nil {
		return ChatOutput{}, err
	}
	if state.Mode == domain.ModeDone {
		state.Mode = domain.ModeIdle
	}

	var t turnResult
	if state.Mode == domain.ModeInterview {
		t, err = s.interviewTurn(ctx, state, message, settings)
	} else {
		t, err = s.guidanceTurn(ctx, state, message, settings)
	}
	if err != nil {
		return ChatOutput{}, err
	}

	state.AppendLog(domain.LogEntry{
		UserMessage: message,
		BotReply:    t.reply,
		Topic:       t.topic,
		At:          time.Now().UTC(),
	}, settings.SessionLogLimit)
	if err := s.sessions.Save(ctx, state); err != nil {
		return ChatOutput{}, newError(ErrorSession, "session_save_error", err)
	}
	s.recordConversation(ctx, state, message, t)

	mode := modeNormal
	if state.Mode == domain.ModeInterview {
		mode = modeInterview
	}
	return ChatOutput{
		Reply:        t.reply,
		Mode:         mode,
		Done:         t.done,
		NextQuestion: t.nextQuestion,
		SessionID:    state.SessionID,
	}, nil
}

// EndSession discards the session state. Nothing already persisted is touched.
func (s *ChatService) EndSession(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return newError(ErrorInvalidInput, "empty_session_id", nil)
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return newError(ErrorSession, "session_delete_error", err)
	}
	return nil
}

func (s *ChatService) loadSession(ctx context.Context, sessionID, studentID string) (*domain.SessionState, error) {
	if sessionID == "" {
		return domain.NewSessionState(newUUID(), studentID), nil
	}
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, newError(ErrorSession, "session_load_error", err)
	}
	if state == nil {
		return domain.NewSessionState(sessionID, studentID), nil
	}
	if state.StudentID != studentID {
		return nil, newError(ErrorInvalidInput, "session_student_mismatch", nil)
	}
	return state, nil
}

func (s *ChatService) interviewTurn(ctx context.Context, state *domain.SessionState, message string, settings domain.Settings) (turnResult, error) {
	switch {
	case domain.MatchesPhrase(message, settings.RestartPhrases):
		return fromTurn(s.engine.Begin(state, nil)), nil
	case domain.MatchesPhrase(message, settings.CancelPhrases):
		return turnResult{reply: s.engine.Cancel(state), topic: guidance.TopicInterview}, nil
	case domain.MatchesPhrase(message, settings.TriggerPhrases):
		if q, ok := interview.CurrentQuestion(state); ok {
			return turnResult{reply: alreadyInterview + " " + q.Prompt, topic: guidance.TopicInterview, nextQuestion: q.Prompt}, nil
		}
	}

	turn, err := s.engine.Answer(ctx, state, message)
	if errors.Is(err, interview.ErrPersistence) {
		return turnResult{}, newError(ErrorPersistenceFailure, "profile_persist_error", err)
	}
	if err != nil {
		return turnResult{}, newError(ErrorInternal, "interview_error", err)
	}
	return fromTurn(turn), nil
}

func (s *ChatService) guidanceTurn(ctx context.Context, state *domain.SessionState, message string, settings domain.Settings) (turnResult, error) {
	profile, err := s.profiles.LoadProfile(ctx, state.StudentID)
	if err != nil {
		return turnResult{}, newError(ErrorInternal, "profile_load_error", err)
	}
	signals := s.loadSignals(ctx, state.StudentID)

	reply := s.generator.Reply(guidance.Input{
		Message:        message,
		Signals:        signals,
		Risk:           risk.Score(signals),
		Profile:        profile,
		Session:        state,
		FrequentTopics: s.frequentTopics(ctx, state.StudentID, settings),
		Settings:       settings,
	})

	switch reply.Action {
	case guidance.ActionStartInterview:
		return fromTurn(s.engine.Begin(state, profile)), nil
	case guidance.ActionRestartInterview:
		return fromTurn(s.engine.Begin(state, nil)), nil
	}
	return turnResult{reply: reply.Text, topic: reply.Topic}, nil
}

// loadSignals never fails the turn: an unavailable source scores as zeros.
func (s *ChatService) loadSignals(ctx context.Context, studentID string) domain.RiskSignals {
	signals, err := s.signals.Signals(ctx, studentID)
	if err != nil {
		s.logger.Warn("signal source unavailable, using zero signals", "student", studentID, "err", err)
		return domain.RiskSignals{}
	}
	return signals
}

func (s *ChatService) frequentTopics(ctx context.Context, studentID string, settings domain.Settings) map[string]bool {
	entries, err := s.conversations.RecentConversation(ctx, studentID, settings.TopicHistoryLimit)
	if err != nil {
		s.logger.Warn("conversation history unavailable", "student", studentID, "err", err)
		return nil
	}
	return guidance.FrequentTopics(entries, settings.FrequentTopicMin)
}

func (s *ChatService) recordConversation(ctx context.Context, state *domain.SessionState, message string, t turnResult) {
	err := s.conversations.AppendConversation(ctx, domain.ConversationEntry{
		StudentID:   state.StudentID,
		SessionID:   state.SessionID,
		UserMessage: message,
		BotReply:    t.reply,
		Topic:       t.topic,
		MessageType: guidance.ClassifyMessage(message),
	})
	if err != nil {
		s.logger.Warn("conversation log append failed", "session", state.SessionID, "err", err)
	}
}

func (s *ChatService) ensureSettings(ctx context.Context) (domain.Settings, error) {
	s.cacheMu.RLock()
	if s.cacheLoaded {
		settings := s.settings
		s.cacheMu.RUnlock()
		return settings, nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return s.settings, nil
	}

	settings, err := s.settingsSrc.LoadSettings(ctx)
	if err != nil {
		return domain.Settings{}, err
	}
	s.settings = settings.WithDefaults()
	s.cacheLoaded = true
	return s.settings, nil
}

func fromTurn(t interview.Turn) turnResult {
	return turnResult{
		reply:        t.Reply,
		topic:        guidance.TopicInterview,
		done:         t.Done,
		nextQuestion: t.NextQuestion,
	}
}

var newUUID = func() string {
	return uuid.NewString()
}
