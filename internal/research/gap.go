package research

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/amanweb/internal/ollama"
)

// Gap evaluation thresholds.
const (
	highQualityScore = 15.0
	highQualityCount = 3
)

// GapEvaluator decides whether another search iteration is worthwhile.
type GapEvaluator struct {
	gen Generator
}

// NewGapEvaluator creates an evaluator. gen may be nil, which makes every
// non-trivial verdict "sufficient".
func NewGapEvaluator(gen Generator) *GapEvaluator {
	return &GapEvaluator{gen: gen}
}

// Evaluate returns whether ranked answers question, and if not, up to two
// follow-up queries. No results means insufficient with the question
// itself as the follow-up. Any model failure counts as sufficient.
func (g *GapEvaluator) Evaluate(ctx context.Context, question string, ranked []EnrichedResult, model string) (bool, []string) {
	if len(ranked) == 0 {
		return false, []string{question}
	}
	if countHighQuality(ranked) >= highQualityCount {
		return true, nil
	}
	if g.gen == nil {
		return true, nil
	}

	reply, err := g.gen.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  buildGapPrompt(question, ranked),
		Options: ollama.Options{Temperature: 0.1, NumPredict: 50},
	})
	if err != nil {
		slog.Warn("gap_evaluation_failed", slog.String("error", err.Error()))
		return true, nil
	}

	sufficient, queries := parseGapResponse(reply)
	if !sufficient {
		slog.Debug("gap_detected", slog.Any("queries", queries))
	}
	return sufficient, queries
}

func countHighQuality(ranked []EnrichedResult) int {
	n := 0
	for _, r := range ranked {
		if r.Score > highQualityScore {
			n++
		}
	}
	return n
}
