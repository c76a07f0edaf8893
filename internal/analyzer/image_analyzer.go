package analyzer

import (
	"context"

	apperrors "go-content-inspector/internal/errors"
	"go-content-inspector/internal/llm"
	"go-content-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// ImageAnalyzer describes an image by handing its URL to a vision model.
// The image itself is never downloaded by the service.
type ImageAnalyzer struct {
	model       llm.Model
	temperature float32
}

func NewImageAnalyzer(model llm.Model, temperature float32) *ImageAnalyzer {
	return &ImageAnalyzer{model: model, temperature: temperature}
}

func (a *ImageAnalyzer) Name() string {
	return "image_analyzer"
}

func (a *ImageAnalyzer) Analyze(ctx context.Context, res Resource) (string, error) {
	raw, err := a.model.Complete(ctx, llm.Request{
		SystemPrompt: imageSystemPrompt,
		UserPrompt:   imageUserPrompt,
		ImageURL:     res.URL,
		JSONResponse: true,
		Temperature:  a.temperature,
	})
	if err != nil {
		if llm.IsRateLimited(err) {
			return "", apperrors.NewRateLimitedError("image analysis throttled", err)
		}
		return "", apperrors.NewAnalyzerBackendError("image analysis failed", err)
	}

	if _, perr := TryParseImageMetaData(raw); perr != nil {
		logger.WithError(perr).WithFields(logrus.Fields{
			"url":      res.URL,
			"analyzer": a.Name(),
		}).Warn("Model response does not match image schema, returning raw text")
	}
	return raw, nil
}
