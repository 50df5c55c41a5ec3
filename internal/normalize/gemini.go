package normalize

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"

	"campusvoice/internal/platform/config"
)

const promptTemplate = `You are a Trust & Safety AI. Your job is to neutralize toxic or informal student grievances into professional, formal office language.

Input: %q

Rules:
1. Identify if the text contains toxic, gross (e.g. "pee", "vomit"), abusive, or highly informal language. Set "isAbusive": true if found.
2. "normalizedText": REWRITE the entire input to be professional, polite, and actionable.
   - "Food is like pee" -> "The quality of the food served in the mess is unsatisfactory and requires improvement."
   - "Warden is stupid" -> "There are concerns regarding the warden's conduct."
   - "Wifi sucks" -> "The connectivity in the hostel is unreliable."
3. If the input is already clean, "normalizedText" should be the polished version of the input.

Output JSON ONLY: { "isAbusive": boolean, "normalizedText": string }`

// GeminiRewriter calls the Gemini API. Safety filters are disabled so the
// model rewrites offensive input instead of refusing it.
type GeminiRewriter struct {
	client         *genai.Client
	model          string
	attemptTimeout time.Duration
	maxRetries     int
}

// NewGeminiRewriter creates the Gemini-backed rewriter. Returns nil when no
// API key is configured so the caller can wire the fallback-only path.
func NewGeminiRewriter(ctx context.Context, cfg config.GeminiConfig) (*GeminiRewriter, error) {
	if cfg.APIKey == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiRewriter{
		client:         client,
		model:          cfg.Model,
		attemptTimeout: cfg.AttemptTimeout,
		maxRetries:     cfg.MaxRetries,
	}, nil
}

func (g *GeminiRewriter) Rewrite(ctx context.Context, text string) (string, error) {
	tracer := otel.Tracer("campusvoice/normalize")
	ctx, span := tracer.Start(ctx, "gemini.generate_content")
	defer span.End()
	span.SetAttributes(attribute.String("gen_ai.request.model", g.model))

	prompt := fmt.Sprintf(promptTemplate, text)

	var response string
	operation := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, g.attemptTimeout)
		defer cancel()

		result, err := g.client.Models.GenerateContent(attemptCtx, g.model,
			genai.Text(prompt),
			&genai.GenerateContentConfig{
				SafetySettings: []*genai.SafetySetting{
					{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
					{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
					{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
					{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
				},
			},
		)
		if err != nil {
			return err
		}
		response = result.Text()
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(g.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	return response, nil
}
