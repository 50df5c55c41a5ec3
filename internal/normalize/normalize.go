// Package normalize rewrites raw grievance text into professional language
// via a generative model. The model is advisory: any failure falls back to the
// identity transform so submission always proceeds.
package normalize

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"campusvoice/internal/platform/metrics"
)

// Result is the external service contract: an abuse flag plus the rewritten
// text.
type Result struct {
	Abusive        bool   `json:"isAbusive"`
	NormalizedText string `json:"normalizedText"`
}

// Rewriter is the raw model call. Implementations return the model's textual
// response, which may be wrapped in code fences.
type Rewriter interface {
	Rewrite(ctx context.Context, text string) (string, error)
}

// Service wraps a Rewriter with parsing, fallback, and metrics.
type Service struct {
	rewriter Rewriter
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewService(rewriter Rewriter, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{rewriter: rewriter, logger: logger, metrics: m}
}

// Normalize returns the abuse flag and professional rewrite for text. On any
// model failure or malformed output it returns {false, text} and never an
// error: normalization is an enhancement, not a dependency.
func (s *Service) Normalize(ctx context.Context, text string) Result {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.NormalizeDuration.Observe(time.Since(start).Seconds())
		}
	}()

	fallback := Result{Abusive: false, NormalizedText: text}
	if s.rewriter == nil {
		return fallback
	}

	raw, err := s.rewriter.Rewrite(ctx, text)
	if err != nil {
		s.logger.WarnContext(ctx, "normalization failed, falling back to original text", "error", err)
		s.countFallback()
		return fallback
	}

	result, err := ParseModelResponse(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "normalization returned malformed output", "error", err)
		s.countFallback()
		return fallback
	}
	if result.NormalizedText == "" {
		result.NormalizedText = text
	}
	return result
}

func (s *Service) countFallback() {
	if s.metrics != nil {
		s.metrics.NormalizeFallbacks.Inc()
	}
}

// ParseModelResponse strips code-fence wrapping and decodes the JSON object
// the prompt demands.
func ParseModelResponse(raw string) (Result, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var result Result
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return Result{}, err
	}
	return result, nil
}
