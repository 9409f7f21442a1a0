// internal/controllers/chat/handler_test.go
package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/errors"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/render"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t *testing.T
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{t: t}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, fields)
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	return l
}

// ==========================
// Test Helper Functions
// ==========================

// scrollTrackingRegion counts Reveal calls so tests can assert that every
// transcript render scrolls to the latest entry.
type scrollTrackingRegion struct {
	*render.Buffer
	mu      sync.Mutex
	reveals int
}

func newScrollTrackingRegion() *scrollTrackingRegion {
	return &scrollTrackingRegion{Buffer: render.NewBuffer()}
}

func (r *scrollTrackingRegion) Reveal() {
	r.mu.Lock()
	r.reveals++
	r.mu.Unlock()
	r.Buffer.Reveal()
}

func (r *scrollTrackingRegion) revealCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reveals
}

func newTestController(t *testing.T, url string) (*Controller, *render.Buffer, *render.Buffer) {
	chatRegion := render.NewBuffer()
	plansRegion := render.NewBuffer()

	cfg := &Config{
		ChatURL:    url + "/mpcdc/chat",
		StatusURL:  url + "/mpcdc/status",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	}
	ctrl, err := NewController(cfg, chatRegion, plansRegion, nil, NewTestLogger(t))
	require.NoError(t, err)
	return ctrl, chatRegion, plansRegion
}

func newMockController(t *testing.T) (*Controller, *render.Buffer, *render.Buffer) {
	chatRegion := render.NewBuffer()
	plansRegion := render.NewBuffer()

	cfg := &Config{MockMode: true, Timeout: time.Second, MaxRetries: 0}
	ctrl, err := NewController(cfg, chatRegion, plansRegion, nil, NewTestLogger(t))
	require.NoError(t, err)
	return ctrl, chatRegion, plansRegion
}

func chatBackend(t *testing.T, reply string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Message)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{Response: reply})
	}))
}

// ==========================
// Integration-style Tests
// ==========================

func TestSendDecodesStructuredReplyAndRendersPlans(t *testing.T) {
	reply := `{"overall_explanation": "This change is **high risk**.", "actionable_plans": [` +
		`{"plan_description": "Schedule off-hours", "confidence_score": 0.9},` +
		`{"plan_description": "Prepare rollback", "confidence_score": "high"}]}`
	server := chatBackend(t, reply)
	defer server.Close()

	ctrl, chatRegion, plansRegion := newTestController(t, server.URL)

	err := ctrl.Send(context.Background(), "Why is this risky?")
	require.NoError(t, err)

	turns := ctrl.Transcript().Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, models.SpeakerUser, turns[0].Speaker)
	assert.Equal(t, "Why is this risky?", turns[0].Content)
	assert.Equal(t, models.SpeakerAssistant, turns[1].Speaker)
	assert.Equal(t, "This change is **high risk**.", turns[1].Content)

	assert.True(t, chatRegion.Contains("Why is this risky?"))
	assert.True(t, chatRegion.Contains("<strong>high risk</strong>"), "assistant turns render as Markdown")
	assert.False(t, chatRegion.Contains("Thinking"), "indicator removed once the turn resolves")

	assert.True(t, plansRegion.Visible())
	assert.True(t, plansRegion.Contains("Schedule off-hours"))
	assert.True(t, plansRegion.Contains("Confidence: high"))
}

func TestSendDecodesFencedReply(t *testing.T) {
	reply := "Here you go:\n```json\n{\"overall_explanation\": \"Fenced analysis.\", \"actionable_plans\": []}\n```"
	server := chatBackend(t, reply)
	defer server.Close()

	ctrl, chatRegion, _ := newTestController(t, server.URL)

	require.NoError(t, ctrl.Send(context.Background(), "analyze"))
	assert.True(t, chatRegion.Contains("Fenced analysis."))
}

func TestSendAppendsNoteWhenPlansMissing(t *testing.T) {
	server := chatBackend(t, `{"overall_explanation": "Explanation only."}`)
	defer server.Close()

	ctrl, chatRegion, plansRegion := newTestController(t, server.URL)

	require.NoError(t, ctrl.Send(context.Background(), "analyze"))

	turns := ctrl.Transcript().Turns()
	require.Len(t, turns, 3)
	assert.Equal(t, noPlansNote, turns[2].Content)
	assert.True(t, chatRegion.Contains(noPlansNote))
	assert.False(t, plansRegion.Visible())
}

func TestSendFallsBackToRawTextOnDecodeFailure(t *testing.T) {
	raw := "I cannot answer in the requested format, sorry."
	server := chatBackend(t, raw)
	defer server.Close()

	ctrl, chatRegion, _ := newTestController(t, server.URL)

	err := ctrl.Send(context.Background(), "analyze")
	require.NoError(t, err, "decode failure is displayed, not returned")

	turns := ctrl.Transcript().Turns()
	require.Len(t, turns, 2)
	assert.Contains(t, turns[1].Content, "could not be fully processed")
	assert.Contains(t, turns[1].Content, raw, "original text survives verbatim")
	assert.True(t, chatRegion.Contains("Displaying raw response:"))
}

func TestSendSurfacesBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Message cannot be empty"}`))
	}))
	defer server.Close()

	ctrl, chatRegion, _ := newTestController(t, server.URL)

	err := ctrl.Send(context.Background(), "   ")
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeServerReportedError, stdErr.Code)
	assert.True(t, chatRegion.Contains("Error: Message cannot be empty"))
}

func TestSendSurfacesTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	ctrl, chatRegion, _ := newTestController(t, server.URL)

	err := ctrl.Send(context.Background(), "hello")
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeTransportFailure, stdErr.Code)

	// The user's turn stays in the transcript even when the backend is gone.
	turns := ctrl.Transcript().Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, "hello", turns[0].Content)
	assert.True(t, chatRegion.Contains("Error:"))
}

func TestSendRejectsTurnWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(chatResponse{Response: `{"overall_explanation": "done"}`})
	}))
	defer server.Close()
	defer close(release)

	ctrl, chatRegion, _ := newTestController(t, server.URL)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.Send(context.Background(), "first")
	}()

	require.Eventually(t, func() bool {
		return chatRegion.Contains("Thinking")
	}, time.Second, 5*time.Millisecond, "indicator shown while pending")

	err := ctrl.Send(context.Background(), "second")
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeTurnInFlight, stdErr.Code)
	assert.True(t, stderrors.IsRetryable(err), "the rejected turn can simply be resent")
	assert.Equal(t, 1, ctrl.Transcript().Len(), "rejected turn leaves no trace")

	release <- struct{}{}
	require.NoError(t, <-done)
}

func TestSendTimeoutSurfacesBackendTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	chatRegion := render.NewBuffer()
	cfg := &Config{ChatURL: server.URL, Timeout: 50 * time.Millisecond, MaxRetries: 0}
	ctrl, err := NewController(cfg, chatRegion, render.NewBuffer(), nil, NewTestLogger(t))
	require.NoError(t, err)

	err = ctrl.Send(context.Background(), "hello")
	require.Error(t, err)

	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeBackendTimeout, stdErr.Code)
}

func TestSendRevealsTranscriptOnEachRender(t *testing.T) {
	server := chatBackend(t, `{"overall_explanation": "Done."}`)
	defer server.Close()

	chatRegion := newScrollTrackingRegion()
	cfg := &Config{ChatURL: server.URL + "/mpcdc/chat", Timeout: 5 * time.Second}
	ctrl, err := NewController(cfg, chatRegion, render.NewBuffer(), nil, NewTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, ctrl.Send(context.Background(), "analyze"))

	// Once with the thinking indicator, once for the resolved turn.
	assert.GreaterOrEqual(t, chatRegion.revealCount(), 2)
}

func TestMockModeAnswersWithoutBackend(t *testing.T) {
	ctrl, chatRegion, _ := newMockController(t)

	err := ctrl.Send(context.Background(), "tell me about an infrastructure change")
	require.NoError(t, err)

	turns := ctrl.Transcript().Turns()
	require.GreaterOrEqual(t, len(turns), 2)
	assert.Contains(t, turns[1].Content, "INFRAESTRUCTURA changes")
	assert.True(t, chatRegion.Visible())
}

// ==========================
// Unit Tests
// ==========================

func TestMockResponseKeywordRouting(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"incident and change", "tell me about incident and change analysis", "ML Insights Assistant"},
		{"bare incident", "incident", "Please provide details about the incident"},
		{"bare change", "changes", "Please provide details about the change"},
		{"infrastructure change", "an infrastructure change", "INFRAESTRUCTURA changes"},
		{"infrastructure incident", "infraestructura incident", "INFRAESTRUCTURA incidents"},
		{"infrastructure without context", "infrastructure", "infrastructure incident or an infrastructure change?"},
		{"deployment change", "deployment change", "DEPLOYMENT changes"},
		{"deployment without context", "desplegament", "deployment incident or a deployment change?"},
		{"security incident", "seguretat incident", "Security incidents cluster analysis"},
		{"security without context", "security", "security incident or a security change?"},
		{"no keywords", "what is the meaning of life", "demo mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, mockResponse(tt.input), tt.contains)
		})
	}
}

func TestCheckStatus(t *testing.T) {
	t.Run("demo mode", func(t *testing.T) {
		ctrl, _, _ := newMockController(t)
		report := ctrl.CheckStatus(context.Background())
		assert.Equal(t, StatusDemo, report.Status)
	})

	t.Run("connected backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.True(t, strings.HasSuffix(r.URL.Path, "/mpcdc/status"))
			json.NewEncoder(w).Encode(StatusReport{Status: StatusConnected, Message: "ok"})
		}))
		defer server.Close()

		ctrl, _, _ := newTestController(t, server.URL)
		report := ctrl.CheckStatus(context.Background())
		assert.Equal(t, StatusConnected, report.Status)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		ctrl, _, _ := newTestController(t, server.URL)
		report := ctrl.CheckStatus(context.Background())
		assert.Equal(t, StatusError, report.Status)
	})
}
