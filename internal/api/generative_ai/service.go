package generativeAI

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"google.golang.org/genai"

	"github.com/BHUWON12/ztraveler/internal/types"
)

const narrativeTimeout = 20 * time.Second

type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NarrativeParams carries the structured trip facts the model narrates.
type NarrativeParams struct {
	Origin       string
	Destination  string
	StartDate    string
	EndDate      string
	TravelerType string
	BudgetTotal  float64
	Interests    []string
	Context      string
}

func NewAIClient(ctx context.Context, model string, logger *slog.Logger) (*AIClient, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &AIClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// GenerateNarrative asks Gemini for the trip summary block. Transport
// errors bubble up so the caller can fall back; malformed model output
// degrades to a structured narrative instead.
func (ai *AIClient) GenerateNarrative(ctx context.Context, params NarrativeParams) (*types.Narrative, error) {
	ctx, cancel := context.WithTimeout(ctx, narrativeTimeout)
	defer cancel()

	prompt := buildNarrativePrompt(params)
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.6),
	})
	if err != nil {
		return nil, fmt.Errorf("narrative generation failed: %w", err)
	}

	return ParseNarrative(result.Text(), params), nil
}

var jsonBlock = regexp.MustCompile(`\{[\s\S]*\}`)

// ParseNarrative extracts the first JSON object from the model output.
// Markdown fences and surrounding commentary are tolerated; unparseable
// output yields a degraded narrative that still names the trip.
func ParseNarrative(raw string, params NarrativeParams) *types.Narrative {
	degraded := &types.Narrative{
		SummaryText: fmt.Sprintf("AI Itinerary for %s to %s, %s to %s.",
			params.Origin, params.Destination, params.StartDate, params.EndDate),
		Highlights: []string{"Could not parse structured JSON"},
	}
	if raw == "" {
		degraded.AICommentary = "No valid output returned."
		return degraded
	}

	match := jsonBlock.FindString(raw)
	if match == "" {
		degraded.AICommentary = truncate(raw, 600)
		return degraded
	}

	var narrative types.Narrative
	if err := json.Unmarshal([]byte(match), &narrative); err != nil {
		degraded.AICommentary = truncate(match, 600)
		return degraded
	}
	return &narrative
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
