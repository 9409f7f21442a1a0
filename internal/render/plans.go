// internal/render/plans.go
package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/BrunoManzanoCTTI/MVP-MPCDC/internal/models"
)

// RenderPlans renders actionable plans as an ordered list in reply order.
// Descriptions are Markdown-bearing and go through the renderer; confidence
// values are literal text. A plan without a description still renders, with
// a placeholder; a missing confidence renders as "N/A".
func RenderPlans(md Markdown, plans []models.ActionablePlan) string {
	if len(plans) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(`<ol class="actionable-plans">`)
	for _, plan := range plans {
		description := plan.Description
		if description == "" {
			description = "No description provided."
		}
		fmt.Fprintf(&sb, `<li><div class="plan-description">%s</div><p class="confidence">Confidence: %s</p></li>`,
			strings.TrimSpace(md.Render(description)),
			html.EscapeString(plan.ConfidenceLabel()),
		)
	}
	sb.WriteString("</ol>")
	return sb.String()
}
