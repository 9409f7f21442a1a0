// internal/models/chat.go
package models

import (
	"strconv"
	"time"
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatTurn is one entry of the conversation transcript. Turns are immutable
// once appended; ordering is the sole source of conversational history.
type ChatTurn struct {
	ID      string
	Speaker Speaker
	Content string
	At      time.Time
}

// AssistantStructuredReply is the decoded form of an assistant turn's raw
// text. Explanation is required for the reply to be considered valid; Plans
// may be empty.
type AssistantStructuredReply struct {
	Explanation string           `json:"overall_explanation"`
	Plans       []ActionablePlan `json:"actionable_plans"`
}

// ActionablePlan is one ranked remediation suggestion. Confidence arrives
// from the assistant as either a string or a number and is displayed
// verbatim.
type ActionablePlan struct {
	Description string `json:"plan_description"`
	Confidence  any    `json:"confidence_score"`
}

// ConfidenceLabel renders the confidence value for display. Absence renders
// as "N/A".
func (p ActionablePlan) ConfidenceLabel() string {
	switch v := p.Confidence.(type) {
	case nil:
		return "N/A"
	case string:
		if v == "" {
			return "N/A"
		}
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return "N/A"
	}
}
