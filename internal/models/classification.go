// internal/models/classification.go
package models

import "encoding/json"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ClassificationResult is the decoded response of the classification
// backend. PredictedLabel is a pointer so a "success" response without a
// usable label can be told apart from an empty one.
type ClassificationResult struct {
	Status         string          `json:"status"`
	PredictedLabel *string         `json:"predicted_label,omitempty"`
	RawPrediction  *float64        `json:"raw_prediction,omitempty"`
	Message        string          `json:"message,omitempty"`
	Details        string          `json:"details,omitempty"`
	RawResponse    json.RawMessage `json:"raw_response,omitempty"`
}

// IsError reports whether the backend explicitly reported a failure.
func (r ClassificationResult) IsError() bool {
	return r.Status == StatusError
}

// HasPrediction reports whether a usable predicted label is present. A
// success status without one is the degraded "prediction unavailable" case,
// not a hard error.
func (r ClassificationResult) HasPrediction() bool {
	return r.Status == StatusSuccess && r.PredictedLabel != nil && *r.PredictedLabel != ""
}
