package research

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/amanweb/internal/domains"
	"github.com/Aman-CERP/amanweb/internal/ollama"
)

// Classifier picks the domain profile for a question.
type Classifier struct {
	gen Generator
	reg *domains.Registry
}

// NewClassifier creates a classifier. gen may be nil, in which case every
// auto-mode question gets the general profile.
func NewClassifier(gen Generator, reg *domains.Registry) *Classifier {
	return &Classifier{gen: gen, reg: reg}
}

// Classify returns the manual profile for an explicit mode without calling
// the model. In auto mode it asks the model for one category; any failure
// yields the general profile.
func (c *Classifier) Classify(ctx context.Context, question string, mode Mode, model string) domains.Profile {
	if mode != ModeAuto {
		if p, ok := c.reg.ModeProfile(string(mode)); ok {
			return p
		}
	}
	if c.gen == nil {
		return c.reg.CategoryProfile(domains.CategoryGeneral)
	}

	reply, err := c.gen.Generate(ctx, ollama.GenerateRequest{
		Model:   model,
		Prompt:  buildClassifyPrompt(c.reg.UserProfile, question),
		Options: ollama.Options{Temperature: 0.1, NumPredict: 10},
	})
	if err != nil {
		slog.Warn("classify_failed", slog.String("error", err.Error()))
		return c.reg.CategoryProfile(domains.CategoryGeneral)
	}

	category := parseCategory(reply)
	slog.Debug("classify_complete", slog.String("category", string(category)))
	return c.reg.CategoryProfile(category)
}
