// internal/controllers/classify-change/models.go
package classifychange

import "encoding/json"

// classifyResponse is the backend's wire shape for /mpcdc/classify_change.
type classifyResponse struct {
	Status         string          `json:"status"`
	PredictedLabel *string         `json:"predicted_label"`
	RawPrediction  *float64        `json:"raw_prediction"`
	Message        string          `json:"message"`
	Details        string          `json:"details"`
	RawResponse    json.RawMessage `json:"raw_response"`
}

// State describes where the controller is in its submission lifecycle.
type State string

const (
	StateIdle                  State = "idle"
	StateSubmitting            State = "submitting"
	StateSuccess               State = "success"
	StatePredictionUnavailable State = "prediction_unavailable"
	StateFailed                State = "failed"
)
