package analyzer

// SummarizationOptions tunes text budgets and the chunk-and-reduce step
type SummarizationOptions struct {
	// ChunkSize is the map-step chunk length in characters
	ChunkSize int
	// ReduceThreshold is the length above which documents are reduced
	ReduceThreshold int
	// TextByteBudget caps page text sent in a single call
	TextByteBudget int
	// MapWorkers bounds concurrent map calls; 1 means sequential
	MapWorkers int
	// ReduceText sends oversized page text through the reducer instead of truncating it
	ReduceText bool

	Temperature float32
}

// DefaultSummarizationOptions returns default summarization options
func DefaultSummarizationOptions() SummarizationOptions {
	return SummarizationOptions{
		ChunkSize:       4000,
		ReduceThreshold: 12000,
		TextByteBudget:  1000,
		MapWorkers:      1,
		Temperature:     0.2,
	}
}

// WithChunking sets the chunk size and reduction threshold
func (opts SummarizationOptions) WithChunking(chunkSize, threshold int) SummarizationOptions {
	opts.ChunkSize = chunkSize
	opts.ReduceThreshold = threshold
	return opts
}

// WithTextBudget sets the page text budget
func (opts SummarizationOptions) WithTextBudget(bytes int) SummarizationOptions {
	opts.TextByteBudget = bytes
	return opts
}

// WithMapWorkers enables a bounded pool for the map step
func (opts SummarizationOptions) WithMapWorkers(workers int) SummarizationOptions {
	opts.MapWorkers = workers
	return opts
}

// WithTextReduction makes the text analyzer reduce instead of truncate
func (opts SummarizationOptions) WithTextReduction(enabled bool) SummarizationOptions {
	opts.ReduceText = enabled
	return opts
}

func (opts SummarizationOptions) normalized() SummarizationOptions {
	def := DefaultSummarizationOptions()
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = def.ChunkSize
	}
	if opts.ReduceThreshold <= 0 {
		opts.ReduceThreshold = def.ReduceThreshold
	}
	if opts.TextByteBudget <= 0 {
		opts.TextByteBudget = def.TextByteBudget
	}
	if opts.MapWorkers < 1 {
		opts.MapWorkers = 1
	}
	return opts
}
