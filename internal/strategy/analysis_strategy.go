package strategy

import (
	"context"
	"sync"

	"go-content-inspector/internal/analyzer"
	"go-content-inspector/internal/content"
	apperrors "go-content-inspector/internal/errors"
)

// UnsupportedContentMessage is returned to callers for content kinds with no analyzer.
const UnsupportedContentMessage = "Unsupported link content"

// Registry selects the analysis strategy for a content kind
type Registry struct {
	mu         sync.RWMutex
	strategies map[content.Kind]analyzer.Analyzer
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[content.Kind]analyzer.Analyzer)}
}

// Register binds an analyzer to a kind, replacing any previous binding.
// KindUnsupported cannot be bound.
func (r *Registry) Register(kind content.Kind, a analyzer.Analyzer) {
	if kind == content.KindUnsupported || a == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[kind] = a
}

// Resolve returns the analyzer for kind or an unsupported-content error
func (r *Registry) Resolve(kind content.Kind) (analyzer.Analyzer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.strategies[kind]
	if !ok {
		return nil, apperrors.NewUnsupportedContentError(UnsupportedContentMessage, nil).
			WithDetails(string(kind))
	}
	return a, nil
}

// Execute resolves the analyzer for kind and runs it
func (r *Registry) Execute(ctx context.Context, kind content.Kind, res analyzer.Resource) (string, error) {
	a, err := r.Resolve(kind)
	if err != nil {
		return "", err
	}
	return a.Analyze(ctx, res)
}

// Kinds lists the kinds that currently have an analyzer
func (r *Registry) Kinds() []content.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]content.Kind, 0, len(r.strategies))
	for k := range r.strategies {
		kinds = append(kinds, k)
	}
	return kinds
}
