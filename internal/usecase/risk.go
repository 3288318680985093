package usecase

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"student-agent/internal/domain"
	"student-agent/internal/guidance"
	"student-agent/internal/risk"
)

// RiskReport is the per-student view served to counselors.
type RiskReport struct {
	StudentID         string             `json:"studentId"`
	Score             int                `json:"riskScore"`
	Label             domain.RiskLabel   `json:"riskLabel"`
	Reasons           []string           `json:"reasons"`
	RecommendedAction string             `json:"recommendedAction"`
	Signals           domain.RiskSignals `json:"signals"`
	ConversationTurns int                `json:"conversationTurns"`
}

// Risk scores one student. Unavailable signals score as zeros and an
// unavailable turn counter reports zero turns.
func (s *ChatService) Risk(ctx context.Context, studentID string) (RiskReport, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return RiskReport{}, newError(ErrorInvalidInput, "empty_student_id", nil)
	}

	signals := s.loadSignals(ctx, studentID)
	result := risk.Score(signals)

	turns, err := s.conversations.ConversationTurns(ctx, studentID)
	if err != nil {
		s.logger.Warn("conversation turn count unavailable", "student", studentID, "err", err)
		turns = 0
	}

	return RiskReport{
		StudentID:         studentID,
		Score:             result.Score,
		Label:             result.Label,
		Reasons:           result.Reasons,
		RecommendedAction: risk.RecommendedAction(result.Label),
		Signals:           roundSignals(signals),
		ConversationTurns: turns,
	}, nil
}

// StudentList is the staff roster view, highest risk first.
type StudentList struct {
	Summary  risk.Summary       `json:"summary"`
	Students []risk.StudentRisk `json:"students"`
}

type StaffChatInput struct {
	StaffID string
	Message string
}

type StaffChatOutput struct {
	Reply   string       `json:"reply"`
	Topic   string       `json:"topic"`
	Summary risk.Summary `json:"meta"`
}

// RiskSummary aggregates labels over the whole cohort.
func (s *ChatService) RiskSummary(ctx context.Context) (risk.Summary, error) {
	ranked, err := s.rankedCohort(ctx)
	if err != nil {
		return risk.Summary{}, err
	}
	return risk.SummarizeRanked(ranked), nil
}

// Students lists the cohort ordered by risk score.
func (s *ChatService) Students(ctx context.Context) (StudentList, error) {
	ranked, err := s.rankedCohort(ctx)
	if err != nil {
		return StudentList{}, err
	}
	for i := range ranked {
		ranked[i].Signals = roundSignals(ranked[i].Signals)
	}
	return StudentList{Summary: risk.SummarizeRanked(ranked), Students: ranked}, nil
}

// StaffChat answers a staff triage question from live cohort figures. Unlike
// student turns it keeps no session and writes nothing to the conversation log.
func (s *ChatService) StaffChat(ctx context.Context, in StaffChatInput) (StaffChatOutput, error) {
	staffID := strings.TrimSpace(in.StaffID)
	message := strings.TrimSpace(in.Message)
	if staffID == "" {
		return StaffChatOutput{}, newError(ErrorInvalidInput, "empty_staff_id", nil)
	}
	if message == "" {
		return StaffChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(message) > s.maxMessageLen {
		return StaffChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	ranked, err := s.rankedCohort(ctx)
	if err != nil {
		return StaffChatOutput{}, err
	}
	summary := risk.SummarizeRanked(ranked)
	reply := guidance.StaffReply(guidance.StaffInput{Message: message, Ranked: ranked, Summary: summary})
	s.logger.Info("staff question answered", "staff", staffID, "topic", reply.Topic)
	return StaffChatOutput{Reply: reply.Text, Topic: reply.Topic, Summary: summary}, nil
}

func (s *ChatService) rankedCohort(ctx context.Context) ([]risk.StudentRisk, error) {
	cohort, err := s.signals.Cohort(ctx)
	if err != nil {
		return nil, newError(ErrorInternal, "signals_unavailable", err)
	}
	return risk.Rank(cohort), nil
}

func roundSignals(s domain.RiskSignals) domain.RiskSignals {
	s.AttendancePct = round1(s.AttendancePct)
	s.AvgScore = round1(s.AvgScore)
	s.CompletionPct = round1(s.CompletionPct)
	s.MasteryScore = round1(s.MasteryScore)
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
