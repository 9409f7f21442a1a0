// internal/render/cards.go
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
)

// LoadingCard is the transient placeholder shown while a classification is
// pending.
func LoadingCard() string {
	return `<div class="results-card" id="loading-results"><p>Analyzing change data...</p></div>`
}

// ErrorCard renders a backend-reported or transport failure. Details are
// optional and omitted when empty.
func ErrorCard(message, details string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="results-card error">`)
	sb.WriteString("<h5>Error</h5>")
	fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(message))
	if details != "" {
		fmt.Fprintf(&sb, `<p class="error-details">%s</p>`, html.EscapeString(details))
	}
	sb.WriteString("</div>")
	return sb.String()
}

// ResultCard renders a successful classification: the label, the raw score
// to four decimals when present, and a collapsible raw-response block for
// diagnostics.
func ResultCard(result models.ClassificationResult) string {
	var sb strings.Builder
	sb.WriteString(`<div class="results-card success">`)
	sb.WriteString("<h5>Change Classification Result</h5>")

	if result.PredictedLabel != nil {
		fmt.Fprintf(&sb, "<p><strong>Predicted Priority:</strong> %s</p>", html.EscapeString(*result.PredictedLabel))
	}
	if result.RawPrediction != nil {
		fmt.Fprintf(&sb, "<p><small>Raw Prediction Value: %.4f</small></p>", *result.RawPrediction)
	}
	if len(result.RawResponse) > 0 {
		writeRawResponse(&sb, "Show Raw Model Response", result.RawResponse)
	}

	sb.WriteString("</div>")
	return sb.String()
}

// UnavailableCard renders the degraded outcome: the backend answered
// success but no label could be extracted.
func UnavailableCard(message string, rawResponse json.RawMessage) string {
	if message == "" {
		message = "The model returned a response, but the prediction could not be extracted."
	}

	var sb strings.Builder
	sb.WriteString(`<div class="results-card error">`)
	sb.WriteString("<h5>Prediction Unavailable</h5>")
	fmt.Fprintf(&sb, "<p>%s</p>", html.EscapeString(message))
	if len(rawResponse) > 0 {
		writeRawResponse(&sb, "Show Technical Details", rawResponse)
	}
	sb.WriteString("</div>")
	return sb.String()
}

func writeRawResponse(sb *strings.Builder, label string, raw json.RawMessage) {
	var pretty bytes.Buffer
	display := string(raw)
	if err := json.Indent(&pretty, raw, "", "  "); err == nil {
		display = pretty.String()
	}

	sb.WriteString(`<div class="raw-response-toggle">`)
	fmt.Fprintf(sb, `<a href="#">%s</a>`, label)
	fmt.Fprintf(sb, `<div class="raw-response hidden"><pre>%s</pre></div>`, html.EscapeString(display))
	sb.WriteString("</div>")
}
