package generativeAI

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = NarrativeParams{
	Origin:      "Riyadh",
	Destination: "Jeddah",
	StartDate:   "2025-01-01",
	EndDate:     "2025-01-03",
}

func TestParseNarrative_CleanJSON(t *testing.T) {
	raw := `{"summary_text":"Three days by the Red Sea.","highlights":["Al-Balad","Fountain"],"ai_commentary":"Leans historical."}`

	n := ParseNarrative(raw, testParams)
	require.NotNil(t, n)
	assert.Equal(t, "Three days by the Red Sea.", n.SummaryText)
	assert.Equal(t, []string{"Al-Balad", "Fountain"}, n.Highlights)
	assert.Equal(t, "Leans historical.", n.AICommentary)
}

func TestParseNarrative_FencedJSON(t *testing.T) {
	raw := "Here is the summary you asked for.\n```json\n" +
		`{"summary_text":"A short coastal break.","highlights":["Corniche"]}` +
		"\n```\nLet me know if you want changes."

	n := ParseNarrative(raw, testParams)
	require.NotNil(t, n)
	assert.Equal(t, "A short coastal break.", n.SummaryText)
	assert.Equal(t, []string{"Corniche"}, n.Highlights)
}

func TestParseNarrative_NoJSON(t *testing.T) {
	n := ParseNarrative("Sorry, I cannot produce that right now.", testParams)
	require.NotNil(t, n)
	assert.Equal(t, "AI Itinerary for Riyadh to Jeddah, 2025-01-01 to 2025-01-03.", n.SummaryText)
	assert.Equal(t, []string{"Could not parse structured JSON"}, n.Highlights)
	assert.Equal(t, "Sorry, I cannot produce that right now.", n.AICommentary)
}

func TestParseNarrative_MalformedJSON(t *testing.T) {
	n := ParseNarrative(`{"summary_text": "unterminated`+"}", testParams)
	require.NotNil(t, n)
	assert.Contains(t, n.SummaryText, "AI Itinerary for Riyadh to Jeddah")
	assert.Equal(t, []string{"Could not parse structured JSON"}, n.Highlights)
}

func TestParseNarrative_EmptyOutput(t *testing.T) {
	n := ParseNarrative("", testParams)
	require.NotNil(t, n)
	assert.Equal(t, "No valid output returned.", n.AICommentary)
}

func TestParseNarrative_TruncatesLongCommentary(t *testing.T) {
	raw := "prefix " + strings.Repeat("x", 700)
	n := ParseNarrative(raw, testParams)
	require.NotNil(t, n)
	assert.Len(t, n.AICommentary, 600)
}

func TestBuildNarrativePrompt(t *testing.T) {
	prompt := buildNarrativePrompt(NarrativeParams{
		Origin:       "Riyadh",
		Destination:  "Jeddah, Abha",
		StartDate:    "2025-01-01",
		EndDate:      "2025-01-05",
		TravelerType: "family",
		BudgetTotal:  8000,
		Interests:    []string{"history", "food"},
		Context:      "Multi-city travel plan.",
	})

	assert.Contains(t, prompt, "Jeddah, Abha")
	assert.Contains(t, prompt, "2025-01-01")
	assert.Contains(t, prompt, "family")
	assert.Contains(t, prompt, "history")
	assert.Contains(t, prompt, "summary_text")
}
