package factory

import (
	"testing"

	"go-content-inspector/internal/analyzer"
	"go-content-inspector/internal/content"
	"go-content-inspector/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzerFactory_CreateAnalyzer(t *testing.T) {
	f := NewAnalyzerFactory(&testutil.FakeModel{}, testutil.NewFakeFetcher(), nil, analyzer.DefaultSummarizationOptions())

	tests := []struct {
		kind content.Kind
		name string
	}{
		{content.KindImage, "image_analyzer"},
		{content.KindPlainText, "text_analyzer"},
		{content.KindPdf, "pdf_analyzer"},
	}
	for _, tt := range tests {
		a, err := f.CreateAnalyzer(tt.kind)
		require.NoError(t, err)
		assert.Equal(t, tt.name, a.Name())
	}

	_, err := f.CreateAnalyzer(content.KindUnsupported)
	assert.Error(t, err)
}

func TestAnalyzerFactory_BuildRegistry(t *testing.T) {
	f := NewAnalyzerFactory(&testutil.FakeModel{}, testutil.NewFakeFetcher(), nil, analyzer.DefaultSummarizationOptions())

	registry, err := f.BuildRegistry()
	require.NoError(t, err)
	assert.ElementsMatch(t, []content.Kind{content.KindImage, content.KindPlainText, content.KindPdf}, registry.Kinds())

	_, err = registry.Resolve(content.KindUnsupported)
	assert.Error(t, err)
}
