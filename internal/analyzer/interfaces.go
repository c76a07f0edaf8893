package analyzer

import "context"

// Resource identifies the remote content handed to an analyzer.
type Resource struct {
	URL       string
	MediaType string
}

// Analyzer produces the raw model response describing a resource.
type Analyzer interface {
	Analyze(ctx context.Context, res Resource) (string, error)
	Name() string
}

// TextExtractor pulls plain text out of a binary document.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// BodyFetcher downloads resource bodies. storage.ResourceFetcher satisfies it.
type BodyFetcher interface {
	FetchBody(ctx context.Context, url string) ([]byte, error)
}
