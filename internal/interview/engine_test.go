package interview

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"student-agent/internal/domain"
)

type fakeProfiles struct {
	saved map[string]domain.AnswerMap
	calls int
	err   error
}

func (f *fakeProfiles) UpsertProfile(_ context.Context, studentID string, answers domain.AnswerMap) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[string]domain.AnswerMap{}
	}
	f.saved[studentID] = answers.Clone()
	return nil
}

func newTestEngine(t *testing.T, p ProfileWriter) *Engine {
	t.Helper()
	e, err := NewEngine(p, nil)
	require.NoError(t, err)
	return e
}

func TestNewEngine_RequiresWriter(t *testing.T) {
	_, err := NewEngine(nil, nil)
	require.Error(t, err)
}

func TestEngine_FullWalkthroughPersistsProfile(t *testing.T) {
	profiles := &fakeProfiles{}
	e := newTestEngine(t, profiles)
	state := domain.NewSessionState("s1", "stu-1")

	turn := e.Begin(state, nil)
	require.Equal(t, domain.ModeInterview, state.Mode)
	require.Equal(t, 0, state.Cursor)
	require.Contains(t, turn.Reply, "Have you attempted JEE, NEET, both, or neither?")

	script := []string{
		"neither",
		"science",
		"science",
		"no",
		"no",
		"no",
		"0",
		"0",
		"I feel motivated",
		"no",
		"high",
		"staying focused",
		"crack the board exams",
	}
	var last Turn
	for i, msg := range script {
		var err error
		last, err = e.Answer(context.Background(), state, msg)
		require.NoError(t, err, "answer %d", i)
		require.True(t, last.Accepted, "answer %d: %q", i, msg)
		if i < len(script)-1 {
			require.False(t, last.Done, "finished early at answer %d", i)
			require.NotEmpty(t, last.NextQuestion)
		}
	}

	require.True(t, last.Done)
	require.Contains(t, last.Reply, "That completes your profile")
	require.Equal(t, domain.ModeDone, state.Mode)
	require.Nil(t, state.Answers)
	require.Equal(t, 1, profiles.calls)

	saved := profiles.saved["stu-1"]
	require.Len(t, saved, len(Fields()))
	require.Equal(t, "none", saved[domain.FieldAttemptedExam])
	require.Equal(t, "motivated", saved[domain.FieldFeelingAboutStudies])
	require.Equal(t, "high", saved[domain.FieldConfidenceLevel])
	require.Equal(t, "", saved[domain.FieldWorkHistoryNote])
	require.Equal(t, "crack the board exams", saved[domain.FieldGoals])
	require.True(t, IsComplete(saved))
}

func TestEngine_ClarificationDoesNotAdvance(t *testing.T) {
	e := newTestEngine(t, &fakeProfiles{})
	state := domain.NewSessionState("s1", "stu-1")
	e.Begin(state, nil)

	turn, err := e.Answer(context.Background(), state, "what?")
	require.NoError(t, err)
	require.False(t, turn.Accepted)
	require.Equal(t, 0, state.Cursor)
	require.Empty(t, state.Answers)
	require.Contains(t, turn.Reply, "Please choose one: both, NEET, JEE, or neither.")
	require.Contains(t, turn.Reply, "Have you attempted JEE, NEET, both, or neither?")
}

func TestEngine_ConversationalAnswerIsNotStored(t *testing.T) {
	e := newTestEngine(t, &fakeProfiles{})
	state := domain.NewSessionState("s1", "stu-1")
	e.Begin(state, domain.AnswerMap{
		domain.FieldAttemptedExam: "jee",
		domain.FieldTargetStream:  "engineering",
		domain.FieldCurrentStream: "commerce",
	})

	turn, err := e.Answer(context.Background(), state, "yes")
	require.NoError(t, err)
	require.Contains(t, turn.NextQuestion, "stream you did not choose")

	_, err = e.Answer(context.Background(), state, "it is tough but I manage")
	require.NoError(t, err)
	require.NotContains(t, state.Answers, domain.FieldStreamFeelings)
	q, ok := CurrentQuestion(state)
	require.True(t, ok)
	require.Equal(t, domain.FieldFinancialIssues, q.Field)
}

func TestEngine_PersistenceFailureKeepsState(t *testing.T) {
	boom := errors.New("table unavailable")
	profiles := &fakeProfiles{err: boom}
	e := newTestEngine(t, profiles)
	state := domain.NewSessionState("s1", "stu-1")

	seed := completeProfile()
	delete(seed, domain.FieldGoals)
	e.Begin(state, seed)
	q, ok := CurrentQuestion(state)
	require.True(t, ok)
	require.Equal(t, domain.FieldGoals, q.Field)

	before := *state
	before.Answers = state.Answers.Clone()

	_, err := e.Answer(context.Background(), state, "top 1000 rank")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, profiles.calls)

	require.Equal(t, domain.ModeInterview, state.Mode)
	require.Equal(t, before.Cursor, state.Cursor)
	require.Equal(t, before.Answers, state.Answers)
	require.NotContains(t, state.Answers, domain.FieldGoals)
}

func TestEngine_Cancel(t *testing.T) {
	profiles := &fakeProfiles{}
	e := newTestEngine(t, profiles)
	state := domain.NewSessionState("s1", "stu-1")
	e.Begin(state, nil)
	_, err := e.Answer(context.Background(), state, "jee")
	require.NoError(t, err)
	require.NotEmpty(t, state.Answers)

	reply := e.Cancel(state)
	require.Contains(t, reply, "nothing was saved")
	require.Equal(t, domain.ModeIdle, state.Mode)
	require.Empty(t, state.Answers)
	require.Equal(t, 0, state.Cursor)
	require.True(t, state.InterviewDeclined)
	require.Zero(t, profiles.calls)

	_, err = e.Answer(context.Background(), state, "science")
	require.ErrorIs(t, err, ErrNotActive)
}

func TestEngine_BeginResumesPartialProfile(t *testing.T) {
	e := newTestEngine(t, &fakeProfiles{})
	state := domain.NewSessionState("s1", "stu-1")

	turn := e.Begin(state, domain.AnswerMap{
		domain.FieldAttemptedExam:   "neet",
		domain.FieldTargetStream:    "medical",
		domain.FieldCurrentStream:   "medical",
		domain.FieldStreamMismatch:  "0",
		domain.FieldFinancialIssues: "1",
	})
	require.Contains(t, turn.Reply, "Welcome back")
	require.Equal(t, domain.FieldWorkedAfterSchool, turn.Field)
	require.Equal(t, "Did you work after school or during your study break? Say yes or no.", turn.NextQuestion)
}

func TestEngine_ResumeRoundTrip(t *testing.T) {
	profiles := &fakeProfiles{}
	e := newTestEngine(t, profiles)
	state := domain.NewSessionState("s1", "stu-1")
	e.Begin(state, nil)
	for _, msg := range []string{"both", "engineering", "engineering", "no", "yes"} {
		_, err := e.Answer(context.Background(), state, msg)
		require.NoError(t, err)
	}
	wantCursor := state.Cursor
	persisted := state.Answers.Clone()

	resumed := domain.NewSessionState("s2", "stu-1")
	e.Begin(resumed, persisted)
	require.Equal(t, wantCursor, resumed.Cursor)
	require.Equal(t, persisted, resumed.Answers)
}

func TestEngine_BeginOnCompleteProfile(t *testing.T) {
	e := newTestEngine(t, &fakeProfiles{})
	state := domain.NewSessionState("s1", "stu-1")

	turn := e.Begin(state, completeProfile())
	require.True(t, turn.Done)
	require.Contains(t, turn.Reply, "already complete")
	require.Equal(t, domain.ModeIdle, state.Mode)
}

func TestAcknowledge(t *testing.T) {
	require.Equal(t, "Love that confidence.", Acknowledge(domain.FieldConfidenceLevel, "high"))
	require.Equal(t, "That is a clear goal.", Acknowledge(domain.FieldGoals, "anything"))
	require.Equal(t, defaultAck, Acknowledge(domain.FieldTargetStream, "science"))
}
