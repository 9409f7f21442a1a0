// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ClassificationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classification_requests_total",
			Help: "Total number of classification submissions by outcome",
		},
		[]string{"outcome"},
	)

	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_turns_total",
			Help: "Total number of chat turns by outcome",
		},
		[]string{"outcome"},
	)

	DecodeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_decode_outcomes_total",
			Help: "Assistant reply decode attempts by stage that resolved them",
		},
		[]string{"stage"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "backend_request_duration_seconds",
			Help: "Duration of backend calls in seconds",
		},
		[]string{"endpoint"},
	)

	SubmissionsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "submissions_in_flight",
			Help: "Number of backend calls currently pending per controller",
		},
		[]string{"controller"},
	)
)
