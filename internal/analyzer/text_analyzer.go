package analyzer

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "go-content-inspector/internal/errors"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// TextAnalyzer summarizes HTML and plain-text pages.
type TextAnalyzer struct {
	fetcher    BodyFetcher
	summarizer *Summarizer
	reducer    *Reducer
	budget     int
	reduce     bool
}

func NewTextAnalyzer(fetcher BodyFetcher, summarizer *Summarizer, reducer *Reducer, opts SummarizationOptions) *TextAnalyzer {
	opts = opts.normalized()
	return &TextAnalyzer{
		fetcher:    fetcher,
		summarizer: summarizer,
		reducer:    reducer,
		budget:     opts.TextByteBudget,
		reduce:     opts.ReduceText,
	}
}

func (a *TextAnalyzer) Name() string {
	return "text_analyzer"
}

func (a *TextAnalyzer) Analyze(ctx context.Context, res Resource) (string, error) {
	body, err := a.fetcher.FetchBody(ctx, res.URL)
	if err != nil {
		return "", err
	}

	text, err := ExtractPageText(body, res.MediaType)
	if err != nil {
		return "", apperrors.NewFetchError("failed to parse page", err)
	}

	var summary string
	if a.reduce && a.reducer != nil {
		summary, err = a.reducer.Summarize(ctx, text)
	} else {
		summary, err = a.summarizer.Summarize(ctx, TruncateBytes(text, a.budget))
	}
	if err != nil {
		return "", apperrors.NewRateLimitedError("text summarization failed", err)
	}
	return summary, nil
}

// ExtractPageText returns the visible text of an HTML document, or the body
// itself for text/plain, with whitespace runs collapsed to single spaces.
func ExtractPageText(body []byte, mediaType string) (string, error) {
	raw := string(body)
	if mediaType != "text/plain" {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return "", err
		}
		doc.Find("script, style, noscript, template").Remove()
		raw = doc.Text()
	}
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " ")), nil
}

// TruncateBytes cuts s to at most limit bytes without splitting a rune.
func TruncateBytes(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
