package analyzer

import (
	"context"
	"strings"

	apperrors "go-content-inspector/internal/errors"
	"go-content-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// PdfAnalyzer summarizes PDF documents, reducing long ones chunk by chunk.
type PdfAnalyzer struct {
	fetcher   BodyFetcher
	extractor TextExtractor
	reducer   *Reducer
}

func NewPdfAnalyzer(fetcher BodyFetcher, extractor TextExtractor, reducer *Reducer) *PdfAnalyzer {
	return &PdfAnalyzer{fetcher: fetcher, extractor: extractor, reducer: reducer}
}

func (a *PdfAnalyzer) Name() string {
	return "pdf_analyzer"
}

func (a *PdfAnalyzer) Analyze(ctx context.Context, res Resource) (string, error) {
	body, err := a.fetcher.FetchBody(ctx, res.URL)
	if err != nil {
		return "", err
	}

	text, err := a.extractor.ExtractText(body)
	if err != nil {
		return "", apperrors.NewEmptyExtractionError("No text extracted from PDF", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewEmptyExtractionError("No text extracted from PDF", nil)
	}

	logger.WithFields(logrus.Fields{
		"url":     res.URL,
		"length":  len(text),
		"reduced": a.reducer.NeedsReduction(text),
	}).Debug("Extracted PDF text")

	summary, err := a.reducer.Summarize(ctx, text)
	if err != nil {
		return "", apperrors.NewRateLimitedError("PDF summarization failed", err)
	}
	return summary, nil
}
