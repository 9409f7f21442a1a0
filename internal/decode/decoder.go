// internal/decode/decoder.go

// Package decode recovers structured assistant replies from raw text that
// may or may not be well-formed JSON. Stages run in strict order; the first
// stage that yields a valid reply wins, and a reply that survives no stage
// fails with the original text preserved for display.
package decode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
)

const (
	StageDirect      = "direct"
	StageFencedBlock = "fenced_block"
)

// fencedBlock matches the first ```json ... ``` block in a prose reply.
var fencedBlock = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// replySchema gates candidate documents before unmarshalling. An
// explanation is mandatory; plans are optional and tolerate string or
// numeric confidence values.
const replySchema = `{
	"type": "object",
	"required": ["overall_explanation"],
	"properties": {
		"overall_explanation": {"type": "string", "minLength": 1},
		"actionable_plans": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"plan_description": {"type": "string"},
					"confidence_score": {"type": ["string", "number", "null"]}
				}
			}
		}
	}
}`

// Result carries the decoded reply and the stage that produced it.
type Result struct {
	Reply models.AssistantStructuredReply
	Stage string
}

// Error marks a reply no decode stage could recover. RawText is the
// assistant's output exactly as received, never trimmed or rewritten, so
// callers can fall back to displaying it. StagesTried lists, in order, the
// stages that were attempted: a fenced stage appears only when a fenced
// json block was actually found in the text.
type Error struct {
	RawText     string
	StagesTried []string
}

func (e *Error) Error() string {
	return "assistant reply matched no decode stage"
}

// Decoder validates and unmarshals assistant replies. The zero value is not
// usable; construct with NewDecoder so the schema is compiled once.
type Decoder struct {
	schema *gojsonschema.Schema
}

func NewDecoder() (*Decoder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(replySchema))
	if err != nil {
		return nil, fmt.Errorf("compile reply schema: %w", err)
	}
	return &Decoder{schema: schema}, nil
}

// Decode runs the stage chain over raw text. Order is fixed: the whole text
// as JSON first, then the first fenced json block.
func (d *Decoder) Decode(raw string) (Result, error) {
	stagesTried := []string{StageDirect}
	if reply, ok := d.tryParse(strings.TrimSpace(raw)); ok {
		return Result{Reply: reply, Stage: StageDirect}, nil
	}

	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		stagesTried = append(stagesTried, StageFencedBlock)
		if reply, ok := d.tryParse(m[1]); ok {
			return Result{Reply: reply, Stage: StageFencedBlock}, nil
		}
	}

	return Result{}, &Error{RawText: raw, StagesTried: stagesTried}
}

// tryParse accepts a candidate only when it is valid JSON, passes the
// schema, and carries a non-empty explanation.
func (d *Decoder) tryParse(candidate string) (models.AssistantStructuredReply, bool) {
	if candidate == "" {
		return models.AssistantStructuredReply{}, false
	}

	validation, err := d.schema.Validate(gojsonschema.NewStringLoader(candidate))
	if err != nil || !validation.Valid() {
		return models.AssistantStructuredReply{}, false
	}

	var reply models.AssistantStructuredReply
	if err := json.Unmarshal([]byte(candidate), &reply); err != nil {
		return models.AssistantStructuredReply{}, false
	}
	if strings.TrimSpace(reply.Explanation) == "" {
		return models.AssistantStructuredReply{}, false
	}

	return reply, true
}
