package factory

import (
	"fmt"

	"go-content-inspector/internal/analyzer"
	"go-content-inspector/internal/content"
	"go-content-inspector/internal/llm"
	"go-content-inspector/internal/strategy"
)

// AnalyzerFactory creates per-kind analyzers
type AnalyzerFactory interface {
	CreateAnalyzer(kind content.Kind) (analyzer.Analyzer, error)
	// BuildRegistry registers an analyzer for every supported kind
	BuildRegistry() (*strategy.Registry, error)
}

// analyzerFactory implements AnalyzerFactory over shared collaborators
type analyzerFactory struct {
	model      llm.Model
	fetcher    analyzer.BodyFetcher
	extractor  analyzer.TextExtractor
	opts       analyzer.SummarizationOptions
	summarizer *analyzer.Summarizer
	reducer    *analyzer.Reducer
}

// NewAnalyzerFactory creates a new analyzer factory. A nil extractor selects
// the built-in PDF text extractor.
func NewAnalyzerFactory(model llm.Model, fetcher analyzer.BodyFetcher, extractor analyzer.TextExtractor, opts analyzer.SummarizationOptions) AnalyzerFactory {
	if extractor == nil {
		extractor = analyzer.NewPDFTextExtractor()
	}
	summarizer := analyzer.NewSummarizer(model, opts.Temperature)
	return &analyzerFactory{
		model:      model,
		fetcher:    fetcher,
		extractor:  extractor,
		opts:       opts,
		summarizer: summarizer,
		reducer:    analyzer.NewReducer(summarizer, opts),
	}
}

// CreateAnalyzer creates an analyzer based on the content kind
func (f *analyzerFactory) CreateAnalyzer(kind content.Kind) (analyzer.Analyzer, error) {
	switch kind {
	case content.KindImage:
		return analyzer.NewImageAnalyzer(f.model, f.opts.Temperature), nil
	case content.KindPlainText:
		return analyzer.NewTextAnalyzer(f.fetcher, f.summarizer, f.reducer, f.opts), nil
	case content.KindPdf:
		return analyzer.NewPdfAnalyzer(f.fetcher, f.extractor, f.reducer), nil
	default:
		return nil, fmt.Errorf("unsupported analyzer kind: %s", kind)
	}
}

func (f *analyzerFactory) BuildRegistry() (*strategy.Registry, error) {
	registry := strategy.NewRegistry()
	for _, kind := range []content.Kind{content.KindImage, content.KindPlainText, content.KindPdf} {
		a, err := f.CreateAnalyzer(kind)
		if err != nil {
			return nil, err
		}
		registry.Register(kind, a)
	}
	return registry, nil
}
