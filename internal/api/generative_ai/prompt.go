package generativeAI

import (
	"fmt"
	"strings"
)

// buildNarrativePrompt renders the trip facts into the planner persona
// prompt. The JSON contract at the end is what ParseNarrative expects.
func buildNarrativePrompt(params NarrativeParams) string {
	var sb strings.Builder
	sb.WriteString("You are a professional Saudi travel planner AI.\n")
	sb.WriteString("Use the retrieved travel data below to produce an engaging, accurate, day-wise trip plan.\n\n")

	sb.WriteString("User Preferences:\n")
	fmt.Fprintf(&sb, "- Origin: %s\n", params.Origin)
	fmt.Fprintf(&sb, "- Destination: %s\n", params.Destination)
	fmt.Fprintf(&sb, "- Dates: %s to %s\n", params.StartDate, params.EndDate)
	fmt.Fprintf(&sb, "- Traveler Type: %s\n", params.TravelerType)
	fmt.Fprintf(&sb, "- Budget: %.0f SAR\n", params.BudgetTotal)
	fmt.Fprintf(&sb, "- Interests: %s\n\n", strings.Join(params.Interests, ", "))

	context := params.Context
	if context == "" {
		context = "No retrieved context provided."
	}
	fmt.Fprintf(&sb, "Retrieved Context:\n%s\n\n", context)

	sb.WriteString(`Instructions:
1. Recommend a logical sequence of days with timing hints (morning, afternoon, evening).
2. For each day, describe:
   - Hotel and its reason for selection
   - Top activities (with category, entry fee, and best time)
   - Meals or local experiences if mentioned
3. Keep the tone friendly and realistic.
4. End with a short paragraph summarizing why this itinerary fits the user's profile and budget.

Return JSON only:
{
  "summary_text": "...",
  "highlights": ["...", "..."],
  "ai_commentary": "A short paragraph describing why this plan works well"
}
`)
	return sb.String()
}
