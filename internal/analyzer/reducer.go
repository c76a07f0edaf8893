package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go-content-inspector/internal/logger"

	"github.com/sirupsen/logrus"
)

// ChunkError reports the first chunk whose map-step summary failed.
type ChunkError struct {
	Index int
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("summarize chunk %d of %d: %v", e.Index+1, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// SplitChunks cuts text into consecutive pieces of size characters; the last
// piece may be shorter. Empty text yields no chunks.
func SplitChunks(text string, size int) []string {
	if text == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	chunks := make([]string, 0, utf8.RuneCountInString(text)/size+1)
	for len(text) > 0 {
		end, n := 0, 0
		for end < len(text) && n < size {
			_, w := utf8.DecodeRuneInString(text[end:])
			end += w
			n++
		}
		chunks = append(chunks, text[:end])
		text = text[end:]
	}
	return chunks
}

// Reducer summarizes long documents with a map step over fixed-size chunks
// followed by one reduce call over the joined partial summaries.
type Reducer struct {
	summarizer *Summarizer
	chunkSize  int
	threshold  int
	workers    int
}

func NewReducer(summarizer *Summarizer, opts SummarizationOptions) *Reducer {
	opts = opts.normalized()
	return &Reducer{
		summarizer: summarizer,
		chunkSize:  opts.ChunkSize,
		threshold:  opts.ReduceThreshold,
		workers:    opts.MapWorkers,
	}
}

// NeedsReduction reports whether text is longer than the reduction threshold.
func (r *Reducer) NeedsReduction(text string) bool {
	return utf8.RuneCountInString(text) > r.threshold
}

// Summarize makes one call for text at or under the threshold and reduces
// anything longer.
func (r *Reducer) Summarize(ctx context.Context, text string) (string, error) {
	if !r.NeedsReduction(text) {
		return r.summarizer.Summarize(ctx, text)
	}
	return r.Reduce(ctx, text)
}

// Reduce always runs the chunked map step and the final reduce call. Any
// failed chunk fails the whole reduction.
func (r *Reducer) Reduce(ctx context.Context, text string) (string, error) {
	chunks := SplitChunks(text, r.chunkSize)

	var (
		partials []string
		err      error
	)
	if r.workers > 1 && len(chunks) > 1 {
		partials, err = r.mapPooled(ctx, chunks)
	} else {
		partials, err = r.mapSequential(ctx, chunks)
	}
	if err != nil {
		return "", err
	}

	return r.summarizer.Summarize(ctx, strings.Join(partials, "\n"))
}

func (r *Reducer) mapSequential(ctx context.Context, chunks []string) ([]string, error) {
	partials := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		summary, err := r.summarizer.Summarize(ctx, chunk)
		if err != nil {
			return nil, &ChunkError{Index: i, Total: len(chunks), Err: err}
		}
		partials = append(partials, summary)
	}
	return partials, nil
}

// mapPooled runs the map step on a bounded pool. Results are written by
// chunk index so the join keeps document order.
func (r *Reducer) mapPooled(ctx context.Context, chunks []string) ([]string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := r.workers
	if workers > len(chunks) {
		workers = len(chunks)
	}
	pool := NewWorkerPool(workers)
	pool.Start()
	defer pool.Close()

	partials := make([]string, len(chunks))
	errs := make([]error, len(chunks))

	for i, chunk := range chunks {
		pool.Submit(func() {
			if ctx.Err() != nil {
				errs[i] = ctx.Err()
				return
			}
			summary, err := r.summarizer.Summarize(ctx, chunk)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			partials[i] = summary
		})
	}
	pool.Wait()

	stats := pool.GetStats()
	logger.WithFields(logrus.Fields{
		"workers":        workers,
		"total_jobs":     stats.TotalJobs,
		"completed_jobs": stats.CompletedJobs,
		"active_workers": stats.ActiveWorkers,
	}).Debug("Map step finished")

	// Chunks cancelled after a sibling failed carry context.Canceled; report
	// the failure that caused it.
	first := -1
	for i, err := range errs {
		if err == nil {
			continue
		}
		if first < 0 {
			first = i
		}
		if !errors.Is(err, context.Canceled) {
			return nil, &ChunkError{Index: i, Total: len(chunks), Err: err}
		}
	}
	if first >= 0 {
		return nil, &ChunkError{Index: first, Total: len(chunks), Err: errs[first]}
	}
	return partials, nil
}
