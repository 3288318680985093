package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"student-agent/internal/usecase"
)

func TestHTTPHandler_Chat(t *testing.T) {
	uc := &stubUseCase{chatOut: usecase.ChatOutput{Reply: "hi there", Mode: "normal", SessionID: "sess-1"}}
	srv := httptest.NewServer(NewHTTPHandler(newTestHandler(t, uc)))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/chat", strings.NewReader(`{"studentId":"stu-1","message":"hello"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-Id", "corr-7")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "corr-7", resp.Header.Get(correlationHeader))
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, usecase.ChatInput{StudentID: "stu-1", Message: "hello"}, uc.chatIn)
}

func TestHTTPHandler_QueryAndFallbackRoutes(t *testing.T) {
	uc := &stubUseCase{}
	handler := NewHTTPHandler(newTestHandler(t, uc))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/risk?studentId=stu-4", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "stu-4", uc.riskFor)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/chat", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
