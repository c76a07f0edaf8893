package analyzer

import (
	"context"

	"go-content-inspector/internal/llm"
)

// Summarizer asks the model for a TextMetaData-shaped summary of one text.
type Summarizer struct {
	model       llm.Model
	temperature float32
}

func NewSummarizer(model llm.Model, temperature float32) *Summarizer {
	return &Summarizer{model: model, temperature: temperature}
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	return s.model.Complete(ctx, llm.Request{
		SystemPrompt: summarySystemPrompt,
		UserPrompt:   summaryUserPrompt + "\n\n" + text,
		JSONResponse: true,
		Temperature:  s.temperature,
	})
}
