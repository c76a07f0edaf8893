package analyzer

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"go-content-inspector/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(pages ...string) []byte {
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFTextExtractor_SinglePage(t *testing.T) {
	text, err := NewPDFTextExtractor().ExtractText(buildPDF("Hello PDF World"))

	require.NoError(t, err)
	assert.Equal(t, "Hello PDF World\n", text)
}

func TestPDFTextExtractor_PagesInOrder(t *testing.T) {
	text, err := NewPDFTextExtractor().ExtractText(buildPDF("First page text", "Second page text"))

	require.NoError(t, err)
	assert.Equal(t, "First page text\nSecond page text\n", text)

	first := strings.Index(text, "First page text")
	second := strings.Index(text, "Second page text")
	require.GreaterOrEqual(t, first, 0)
	assert.Greater(t, second, first)
}

func TestPdfAnalyzer_WithPDFTextExtractor(t *testing.T) {
	url := "https://example.com/brochure.pdf"
	fetcher := testutil.NewFakeFetcher().Serve(url, "application/pdf", buildPDF("Quarterly report", "Revenue grew"))
	model := &testutil.FakeModel{Reply: `{"summary":"ok"}`}
	reducer := NewReducer(NewSummarizer(model, 0.2), DefaultSummarizationOptions())

	got, err := NewPdfAnalyzer(fetcher, NewPDFTextExtractor(), reducer).
		Analyze(context.Background(), Resource{URL: url, MediaType: "application/pdf"})

	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok"}`, got)
	require.Equal(t, 1, model.CallCount())
	assert.Equal(t, "Quarterly report\nRevenue grew\n", testutil.PromptPayload(model.Requests()[0]))
}
