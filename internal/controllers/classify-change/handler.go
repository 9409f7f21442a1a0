// internal/controllers/classify-change/handler.go
package classifychange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	stderrors "github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/errors"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/httpx"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/metrics"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/common/observability"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/payload"
	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/render"
)

const ControllerName = "classify-change"

// Logger interface definition
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

// AssistantNotifier receives the classification handoff message. Delivery is
// best effort; a notifier failure never degrades a successful classification.
type AssistantNotifier interface {
	NotifyAssistant(ctx context.Context, message string) error
}

type Controller struct {
	config   *Config
	client   *httpx.Client
	builder  *payload.Builder
	region   render.Region
	notifier AssistantNotifier
	obs      *observability.Observability
	logger   Logger

	mu       sync.Mutex
	inFlight bool
	state    State
}

func NewController(config *Config, region render.Region, notifier AssistantNotifier, obs *observability.Observability, log Logger) *Controller {
	return &Controller{
		config:   config,
		client:   httpx.NewClient(0), // rely on context deadlines, not a client timeout
		builder:  payload.NewBuilder(),
		region:   region,
		notifier: notifier,
		obs:      obs,
		state:    StateIdle,
		logger: log.With(map[string]interface{}{
			"controller": ControllerName,
		}),
	}
}

// State returns the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit classifies one change. While a submission is pending any further
// call is rejected immediately without touching the results region. Every
// terminal outcome fully replaces the region's content.
func (c *Controller) Submit(ctx context.Context, changeID string, raw map[string]string) (models.ClassificationResult, error) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Warn("submission rejected, another is in flight", map[string]interface{}{
			"changeId": changeID,
		})
		return models.ClassificationResult{}, stderrors.NewSubmissionInFlightError()
	}
	c.inFlight = true
	c.state = StateSubmitting
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	metrics.SubmissionsInFlight.WithLabelValues(ControllerName).Inc()
	defer metrics.SubmissionsInFlight.WithLabelValues(ControllerName).Dec()

	c.region.Render(render.LoadingCard())
	c.region.Reveal()

	record := c.builder.Build(changeID, raw)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	start := time.Now()
	status, body, err := c.postWithRetry(ctx, record)
	metrics.BackendRequestDuration.WithLabelValues("classify_change").Observe(time.Since(start).Seconds())

	if err != nil {
		return c.failTransport(ctx, changeID, err)
	}

	var wire classifyResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return c.failTransport(ctx, changeID, fmt.Errorf("decode response (status %d): %w", status, err))
	}

	result := models.ClassificationResult{
		Status:         wire.Status,
		PredictedLabel: wire.PredictedLabel,
		RawPrediction:  wire.RawPrediction,
		Message:        wire.Message,
		Details:        wire.Details,
		RawResponse:    wire.RawResponse,
	}

	switch {
	case result.IsError():
		c.setState(StateFailed)
		c.region.Render(render.ErrorCard(result.Message, result.Details))
		c.region.Reveal()
		c.recordOutcome(ctx, "server_error", time.Since(start))
		c.logger.Error("backend reported classification error", map[string]interface{}{
			"changeId":      changeID,
			"message":       result.Message,
			"errorCategory": stderrors.GetErrorCategory(stderrors.ErrCodeServerReportedError),
		})
		return result, stderrors.NewServerReportedError(result.Message, result.Details)

	case result.HasPrediction():
		c.setState(StateSuccess)
		c.region.Render(render.ResultCard(result))
		c.region.Reveal()
		c.recordOutcome(ctx, "success", time.Since(start))
		c.logger.Info("classification succeeded", map[string]interface{}{
			"changeId":       changeID,
			"predictedLabel": *result.PredictedLabel,
		})
		c.notifyAssistant(ctx, record, *result.PredictedLabel)
		return result, nil

	default:
		// Success status without a usable label: degraded, not an error.
		c.setState(StatePredictionUnavailable)
		c.region.Render(render.UnavailableCard(result.Message, result.RawResponse))
		c.region.Reveal()
		c.recordOutcome(ctx, "prediction_unavailable", time.Since(start))
		c.logger.Warn("prediction unavailable in backend response", map[string]interface{}{
			"changeId": changeID,
		})
		return result, nil
	}
}

func (c *Controller) failTransport(ctx context.Context, changeID string, err error) (models.ClassificationResult, error) {
	stdErr := stderrors.NewTransportFailureError(err)
	if errors.Is(err, context.DeadlineExceeded) {
		stdErr = stderrors.NewBackendTimeoutError("classify_change")
	}

	c.setState(StateFailed)
	c.region.Render(render.ErrorCard(
		fmt.Sprintf("An error occurred while processing your request: %s", err.Error()), ""))
	c.region.Reveal()
	c.recordOutcome(ctx, "transport_error", 0)
	c.logger.Error("classification request failed", map[string]interface{}{
		"changeId":      changeID,
		"error":         err.Error(),
		"errorCategory": stderrors.GetErrorCategory(stdErr.Code),
	})
	return models.ClassificationResult{}, stdErr
}

func (c *Controller) postWithRetry(ctx context.Context, record models.ChangeRecord) (int, []byte, error) {
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

		status, body, err := c.client.PostJSON(ctx, c.config.ClassifyURL, record)
		if err == nil {
			// Application errors arrive as JSON bodies, sometimes on non-2xx
			// statuses; anything with a body is worth decoding.
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

// notifyAssistant hands the predicted label to the conversational side.
// Exactly one notification per successful classification.
func (c *Controller) notifyAssistant(ctx context.Context, record models.ChangeRecord, label string) {
	if c.notifier == nil {
		return
	}

	message := buildHandoffMessage(record, label)
	if err := c.notifier.NotifyAssistant(ctx, message); err != nil {
		c.logger.Warn("assistant notification failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// buildHandoffMessage synthesizes the chat prompt from the prediction plus
// the submitted details, one "- field: value" line per non-null field.
func buildHandoffMessage(record models.ChangeRecord, label string) string {
	var parts []string

	parts = append(parts, fmt.Sprintf(
		"Based on the change details provided, the predicted Priority is: %s. Can you provide more insights on this?", label))

	var lines []string
	for _, field := range record.Fields() {
		if field.Value == nil {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %v", field.Name, field.Value))
	}
	if len(lines) > 0 {
		parts = append(parts, "\nSubmitted change details:")
		parts = append(parts, lines...)
	}

	return strings.Join(parts, "\n")
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) recordOutcome(ctx context.Context, outcome string, duration time.Duration) {
	metrics.ClassificationRequests.WithLabelValues(outcome).Inc()
	if c.obs != nil {
		c.obs.RecordRequestProcessed(ctx, outcome)
		if duration > 0 {
			c.obs.RecordRequestDuration(ctx, duration, outcome)
		}
	}
}
