// internal/controllers/chat/handler.go
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"sync"
	"time"

	stderrors "github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/errors"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/httpx"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/metrics"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/observability"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/decode"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/render"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/transcript"
)

const ControllerName = "chat"

// noPlansNote is appended when a valid reply carries no actionable plans.
const noPlansNote = "AI provided an explanation, but no actionable plans were found or could be displayed."

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Controller struct {
	config      *Config
	client      *httpx.Client
	decoder     *decode.Decoder
	log         *transcript.Log
	markdown    render.Markdown
	chatRegion  render.Region
	plansRegion render.Region
	obs         *observability.Observability
	logger      Logger

	mu       sync.Mutex
	inFlight bool
}

func NewController(config *Config, chatRegion, plansRegion render.Region, obs *observability.Observability, logger Logger) (*Controller, error) {
	decoder, err := decode.NewDecoder()
	if err != nil {
		return nil, err
	}

	return &Controller{
		config:      config,
		client:      httpx.NewClient(0), // rely on context deadlines, not a client timeout
		decoder:     decoder,
		log:         transcript.NewLog(),
		markdown:    render.NewMarkdown(),
		chatRegion:  chatRegion,
		plansRegion: plansRegion,
		obs:         obs,
		logger: logger.With(map[string]interface{}{
			"controller": ControllerName,
		}),
	}, nil
}

// Transcript exposes the conversation log.
func (c *Controller) Transcript() *transcript.Log {
	return c.log
}

// NotifyAssistant lets the classification side hand its prediction over as a
// regular chat turn.
func (c *Controller) NotifyAssistant(ctx context.Context, message string) error {
	return c.Send(ctx, message)
}

// Send submits one user turn and renders the assistant's answer. Turns are
// strictly sequential; a message sent while a turn is pending is rejected
// without touching the transcript.
func (c *Controller) Send(ctx context.Context, message string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Warn("turn rejected, another is in flight", nil)
		return stderrors.NewTurnInFlightError()
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	// The user's text enters the transcript verbatim, before any backend
	// call, and stays there whatever happens next.
	c.log.AppendUser(message)
	c.renderTranscript(true)

	start := time.Now()
	raw, stdErr := c.fetchReply(ctx, message)
	metrics.BackendRequestDuration.WithLabelValues("chat").Observe(time.Since(start).Seconds())

	if stdErr != nil {
		c.log.AppendAssistant(fmt.Sprintf("Error: %s", stdErr.Message))
		c.renderTranscript(false)
		c.recordOutcome(ctx, outcomeFor(stdErr), time.Since(start))
		c.logger.Error("chat turn failed", map[string]interface{}{
			"errorCode":     string(stdErr.Code),
			"errorCategory": stderrors.GetErrorCategory(stdErr.Code),
			"error":         stdErr.Details,
		})
		return stdErr
	}

	c.handleReply(ctx, raw, time.Since(start))
	return nil
}

// handleReply decodes and displays the assistant's raw output. Decode
// failure is a degraded success: the raw text is shown, nothing is lost.
func (c *Controller) handleReply(ctx context.Context, raw string, elapsed time.Duration) {
	result, err := c.decoder.Decode(raw)
	if err != nil {
		decodeErr := err.(*decode.Error)
		metrics.DecodeOutcomes.WithLabelValues("failed").Inc()
		c.recordOutcome(ctx, "decode_failed", elapsed)
		c.logger.Warn("assistant reply failed to decode", map[string]interface{}{
			"rawLength":   len(decodeErr.RawText),
			"stagesTried": decodeErr.StagesTried,
		})

		c.log.AppendAssistant("The AI's response could not be fully processed into the expected format. Displaying raw response:\n\n" + decodeErr.RawText)
		c.renderTranscript(false)
		return
	}

	metrics.DecodeOutcomes.WithLabelValues(result.Stage).Inc()
	c.recordOutcome(ctx, "success", elapsed)
	c.logger.Info("chat turn completed", map[string]interface{}{
		"decodeStage": result.Stage,
		"planCount":   len(result.Reply.Plans),
	})

	c.log.AppendAssistant(result.Reply.Explanation)
	if len(result.Reply.Plans) > 0 {
		if c.plansRegion != nil {
			c.plansRegion.Render(render.RenderPlans(c.markdown, result.Reply.Plans))
			c.plansRegion.Reveal()
		} else {
			c.logger.Warn("no plans region available, plans not rendered", map[string]interface{}{
				"planCount": len(result.Reply.Plans),
			})
		}
	} else {
		c.log.AppendAssistant(noPlansNote)
	}
	c.renderTranscript(false)
}

// fetchReply obtains the assistant's raw text, from the canned responder in
// mock mode or from the backend otherwise.
func (c *Controller) fetchReply(ctx context.Context, message string) (string, *stderrors.StandardError) {
	if c.config.MockMode {
		return mockResponse(message), nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	status, body, err := c.postWithRetry(ctx, chatRequest{Message: message})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", stderrors.NewBackendTimeoutError("chat")
		}
		return "", stderrors.NewTransportFailureError(err)
	}

	var wire chatResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return "", stderrors.NewTransportFailureError(fmt.Errorf("decode response (status %d): %w", status, err))
	}

	if wire.Error != "" {
		return "", stderrors.NewServerReportedError(wire.Error, "")
	}

	return wire.Response, nil
}

func (c *Controller) postWithRetry(ctx context.Context, req chatRequest) (int, []byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Apply exponential backoff
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			}
		}

		status, body, err := c.client.PostJSON(ctx, c.config.ChatURL, req)
		if err == nil {
			if status == http.StatusOK || len(body) > 0 {
				return status, body, nil
			}
			lastErr = fmt.Errorf("status %d with empty body", status)
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
	}

	return 0, nil, lastErr
}

// CheckStatus probes the backend's availability with a bounded timeout.
func (c *Controller) CheckStatus(ctx context.Context) StatusReport {
	if c.config.MockMode {
		return StatusReport{
			Status:  StatusDemo,
			Message: "Chatbot is running in demo mode. Configure a backend URL to enable full functionality.",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var report StatusReport
	status, err := c.client.GetJSON(ctx, c.config.StatusURL, &report)
	if err != nil {
		return StatusReport{Status: StatusError, Message: err.Error()}
	}
	if report.Status == "" {
		report.Status = StatusError
		report.Message = fmt.Sprintf("unexpected status response (HTTP %d)", status)
	}
	return report
}

// renderTranscript replays the whole conversation into the chat region and
// reveals it, so every append scrolls to the latest entry. User turns are
// escaped verbatim; assistant turns go through Markdown.
func (c *Controller) renderTranscript(thinking bool) {
	var sb strings.Builder

	for _, turn := range c.log.Turns() {
		if turn.Speaker == models.SpeakerUser {
			fmt.Fprintf(&sb, `<div class="message user"><div class="message-content">%s</div></div>`,
				html.EscapeString(turn.Content))
		} else {
			fmt.Fprintf(&sb, `<div class="message bot"><div class="message-content">%s</div></div>`,
				c.markdown.Render(turn.Content))
		}
	}

	if thinking {
		sb.WriteString(`<div class="message bot loading"><div class="message-content">` +
			`<span class="thinking-text">Thinking</span><span class="dot"></span><span class="dot"></span><span class="dot"></span>` +
			`</div></div>`)
	}

	c.chatRegion.Render(sb.String())
	c.chatRegion.Reveal()
}

func outcomeFor(stdErr *stderrors.StandardError) string {
	if stdErr.Code == stderrors.ErrCodeServerReportedError {
		return "backend_error"
	}
	return "transport_error"
}

func (c *Controller) recordOutcome(ctx context.Context, outcome string, duration time.Duration) {
	metrics.ChatTurns.WithLabelValues(outcome).Inc()
	if c.obs != nil {
		c.obs.RecordRequestProcessed(ctx, outcome)
		if duration > 0 {
			c.obs.RecordRequestDuration(ctx, duration, outcome)
		}
	}
}
