package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"student-agent/internal/risk"
	"student-agent/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 1 << 20
)

type UseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Risk(ctx context.Context, studentID string) (usecase.RiskReport, error)
	RiskSummary(ctx context.Context) (risk.Summary, error)
	EndSession(ctx context.Context, sessionID string) error
	Students(ctx context.Context) (usecase.StudentList, error)
	StaffChat(ctx context.Context, in usecase.StaffChatInput) (usecase.StaffChatOutput, error)
}

type Handler struct {
	uc     UseCase
	logger *slog.Logger
}

type chatRequest struct {
	StudentID string `json:"studentId" validate:"required,max=128"`
	SessionID string `json:"sessionId" validate:"omitempty,max=128"`
	Message   string `json:"message" validate:"required,max=4000"`
}

type chatResponse struct {
	Reply        string `json:"reply"`
	Mode         string `json:"mode"`
	Done         bool   `json:"done"`
	NextQuestion string `json:"nextQuestion,omitempty"`
	SessionID    string `json:"sessionId"`
}

type staffChatRequest struct {
	StaffID string `json:"staffId" validate:"required,max=128"`
	Message string `json:"message" validate:"required,max=4000"`
}

type riskQuery struct {
	StudentID string `validate:"required,max=128"`
}

type sessionQuery struct {
	SessionID string `validate:"required,max=128"`
}

type endSessionResponse struct {
	SessionID string `json:"sessionId"`
	Ended     bool   `json:"ended"`
}

type errorResponse struct {
	Error string `json:"error"`
	Reply string `json:"reply"`
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

var errorReplies = map[usecase.ErrorCode]string{
	usecase.ErrorInvalidInput:       "I could not read that request. Please check it and try again.",
	usecase.ErrorPersistenceFailure: "I could not save your profile just now. Please send your last answer again.",
	usecase.ErrorSession:            "Your session could not be loaded. Please start a new chat.",
	usecase.ErrorInternal:           "Something went wrong on my side. Please try again in a moment.",
}

// NewHandler builds the handler. A nil logger falls back to slog.Default().
func NewHandler(uc UseCase, logger *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: usecase must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{uc: uc, logger: logger}, nil
}

// Handle serves one API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(req.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	logger := h.logger.With("correlationId", correlationID)

	path := strings.TrimSuffix(req.Path, "/")
	route := req.HTTPMethod + " " + path
	switch route {
	case http.MethodPost + " /chat":
		return h.chat(ctx, logger, correlationID, req.Body), nil
	case http.MethodGet + " /risk":
		return h.risk(ctx, logger, correlationID, req.QueryStringParameters["studentId"]), nil
	case http.MethodGet + " /risk/summary":
		return h.riskSummary(ctx, logger, correlationID), nil
	case http.MethodGet + " /risk/students":
		return h.students(ctx, logger, correlationID), nil
	case http.MethodPost + " /staff/chat":
		return h.staffChat(ctx, logger, correlationID, req.Body), nil
	case http.MethodDelete + " /session":
		return h.endSession(ctx, logger, correlationID, req.QueryStringParameters["sessionId"]), nil
	}

	switch path {
	case "/chat", "/risk", "/risk/summary", "/risk/students", "/staff/chat", "/session":
		return respond(correlationID, http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED", Reply: "That method is not supported here."}), nil
	}
	return respond(correlationID, http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Reply: "Nothing lives at that path."}), nil
}

func (h *Handler) chat(ctx context.Context, logger *slog.Logger, correlationID, body string) events.APIGatewayProxyResponse {
	var req chatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		logger.Warn("chat request body invalid", "err", err)
		return h.errorResponse(logger, correlationID, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_json", Err: err})
	}
	if err := getValidator().Struct(req); err != nil {
		return h.errorResponse(logger, correlationID, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "validation_failed", Err: err})
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{StudentID: req.StudentID, SessionID: req.SessionID, Message: req.Message})
	if err != nil {
		return h.errorResponse(logger, correlationID, err)
	}
	return respond(correlationID, http.StatusOK, chatResponse{
		Reply:        out.Reply,
		Mode:         out.Mode,
		Done:         out.Done,
		NextQuestion: out.NextQuestion,
		SessionID:    out.SessionID,
	})
}

func (h *Handler) risk(ctx context.Context, logger *slog.Logger, correlationID, studentID string) events.APIGatewayProxyResponse {
	if err := getValidator().Struct(riskQuery{StudentID: studentID}); err != nil {
		return h.errorResponse(logger, correlationID, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "validation_failed", Err: err})
	}
	report, err := h.uc.Risk(ctx, studentID)
	if err != nil {
		return h.errorResponse(logger, correlationID, err)
	}
	return respond(correlationID, http.StatusOK, report)
}

func (h *Handler) riskSummary(ctx context.Context, logger *slog.Logger, correlationID string) events.APIGatewayProxyResponse {
	summary, err := h.uc.RiskSummary(ctx)
	if err != nil {
		return h.errorResponse(logger, correlationID, err)
	}
	return respond(correlationID, http.StatusOK, summary)
}

func (h *Handler) students(ctx context.Context, logger *slog.Logger, correlationID string) events.APIGatewayProxyResponse {
	list, err := h.uc.Students(ctx)
	if err != nil {
		return h.errorResponse(logger, correlationID, err)
	}
	return respond(correlationID, http.StatusOK, list)
}

func (h *Handler) staffChat(ctx context.Context, logger *slog.Logger, correlationID, body string) events.APIGatewayProxyResponse {
	var req staffChatRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return h.errorResponse(logger, correlationID, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "invalid_json", Err: err})
	}
	if err := getValidator().Struct(req); err != nil {
		return h.errorResponse(logger, correlationID, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "validation_failed", Err: err})
	}
	out, err := h.uc.StaffChat(ctx, usecase.StaffChatInput{StaffID: req.StaffID, Message: req.Message})
	if err != nil {
		return h.errorResponse(logger, correlationID, err)
	}
	return respond(correlationID, http.StatusOK, out)
}

func (h *Handler) endSession(ctx context.Context, logger *slog.Logger, correlationID, sessionID string) events.APIGatewayProxyResponse {
	if err := getValidator().Struct(sessionQuery{SessionID: sessionID}); err != nil {
		return h.errorResponse(logger, correlationID, &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "validation_failed", Err: err})
	}
	if err := h.uc.EndSession(ctx, sessionID); err != nil {
		return h.errorResponse(logger, correlationID, err)
	}
	return respond(correlationID, http.StatusOK, endSessionResponse{SessionID: sessionID, Ended: true})
}

func (h *Handler) errorResponse(logger *slog.Logger, correlationID string, err error) events.APIGatewayProxyResponse {
	code := usecase.ErrorInternal
	reason := "unexpected_error"
	var uerr *usecase.Error
	if errors.As(err, &uerr) {
		code = uerr.Code
		reason = uerr.Reason
	}

	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "reason", reason, "err", err)
	} else {
		logger.Info("request rejected", "code", code, "reason", reason)
	}
	reply, ok := errorReplies[code]
	if !ok {
		code = usecase.ErrorInternal
		reply = errorReplies[code]
	}
	return respond(correlationID, status, errorResponse{Error: string(code), Reply: reply})
}

func statusFor(code usecase.ErrorCode) int {
	switch code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest
	case usecase.ErrorPersistenceFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respond(correlationID string, status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"INTERNAL_ERROR","reply":"Something went wrong on my side. Please try again in a moment."}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
