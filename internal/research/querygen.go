package research

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/amanweb/internal/domains"
	"github.com/Aman-CERP/amanweb/internal/ollama"
)

// QueryGenerator asks the model for supplementary search queries.
type QueryGenerator struct {
	gen Generator
	reg *domains.Registry
}

// NewQueryGenerator creates a generator. gen may be nil.
func NewQueryGenerator(gen Generator, reg *domains.Registry) *QueryGenerator {
	return &QueryGenerator{gen: gen, reg: reg}
}

// Generate returns the question followed by up to two model-written
// queries. Failure returns just the question.
func (g *QueryGenerator) Generate(ctx context.Context, question, model string) []string {
	queries := []string{question}
	if g.gen == nil {
		return queries
	}

	reply, err := g.gen.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  buildQueryGenPrompt(g.reg.UserProfile, question),
		Options: ollama.Options{Temperature: 0.3, NumPredict: 60},
	})
	if err != nil {
		slog.Warn("query_generation_failed", slog.String("error", err.Error()))
		return queries
	}
	return append(queries, parseGeneratedQueries(reply)...)
}
