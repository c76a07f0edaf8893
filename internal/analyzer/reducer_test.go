package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-content-inspector/internal/llm"
	"go-content-inspector/internal/logger"
	"go-content-inspector/internal/testutil"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoFirstRune summarizes a chunk as "sum-" plus its first rune, and the
// final reduce call as "final".
func echoFirstRune(n int, req llm.Request) (string, error) {
	payload := testutil.PromptPayload(req)
	if strings.HasPrefix(payload, "sum-") {
		return "final", nil
	}
	return "sum-" + string([]rune(payload)[0]), nil
}

func fourChunkText() string {
	return strings.Repeat("a", 4000) + strings.Repeat("b", 4000) +
		strings.Repeat("c", 4000) + strings.Repeat("d", 3000)
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name string
		text string
		size int
		want []string
	}{
		{"empty", "", 3, nil},
		{"exact multiple", "abcdef", 3, []string{"abc", "def"}},
		{"short tail", "abcdefg", 3, []string{"abc", "def", "g"}},
		{"shorter than size", "ab", 3, []string{"ab"}},
		{"multibyte runes", "héllo wörld", 4, []string{"héll", "o wö", "rld"}},
		{"non-positive size", "abc", 0, []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitChunks(tt.text, tt.size))
		})
	}
}

func TestReducer_BelowThresholdSingleCall(t *testing.T) {
	model := &testutil.FakeModel{Reply: `{"summary":"short"}`}
	reducer := NewReducer(NewSummarizer(model, 0.2), DefaultSummarizationOptions())

	text := strings.Repeat("x", 12000)
	got, err := reducer.Summarize(context.Background(), text)

	require.NoError(t, err)
	assert.Equal(t, `{"summary":"short"}`, got)
	require.Equal(t, 1, model.CallCount(), "text at the threshold is not reduced")
	assert.Equal(t, text, testutil.PromptPayload(model.Requests()[0]))
}

func TestReducer_MapThenReduceInOrder(t *testing.T) {
	model := &testutil.FakeModel{Respond: echoFirstRune}
	reducer := NewReducer(NewSummarizer(model, 0.2), DefaultSummarizationOptions())

	got, err := reducer.Summarize(context.Background(), fourChunkText())

	require.NoError(t, err)
	assert.Equal(t, "final", got)

	reqs := model.Requests()
	require.Len(t, reqs, 5, "4 map calls + 1 reduce call")
	for i, want := range []string{"a", "b", "c", "d"} {
		payload := testutil.PromptPayload(reqs[i])
		assert.True(t, strings.HasPrefix(payload, want), "map call %d out of order", i)
	}
	assert.Equal(t, "sum-a\nsum-b\nsum-c\nsum-d", testutil.PromptPayload(reqs[4]))
}

func TestReducer_CallCountFormula(t *testing.T) {
	opts := DefaultSummarizationOptions().WithChunking(100, 250)

	for _, length := range []int{251, 300, 399, 400, 401, 1000} {
		model := &testutil.FakeModel{Reply: "ok"}
		reducer := NewReducer(NewSummarizer(model, 0), opts)

		_, err := reducer.Summarize(context.Background(), strings.Repeat("z", length))
		require.NoError(t, err)

		wantMaps := (length + 99) / 100
		assert.Equal(t, wantMaps+1, model.CallCount(), "length %d", length)
	}
}

func TestReducer_PooledMapKeepsOrder(t *testing.T) {
	model := &testutil.FakeModel{Respond: func(n int, req llm.Request) (string, error) {
		payload := testutil.PromptPayload(req)
		// earlier chunks finish last
		switch payload[0] {
		case 'a':
			time.Sleep(30 * time.Millisecond)
		case 'b':
			time.Sleep(15 * time.Millisecond)
		}
		return echoFirstRune(n, req)
	}}
	opts := DefaultSummarizationOptions().WithMapWorkers(4)
	reducer := NewReducer(NewSummarizer(model, 0), opts)

	got, err := reducer.Summarize(context.Background(), fourChunkText())
	require.NoError(t, err)
	assert.Equal(t, "final", got)

	reqs := model.Requests()
	require.Len(t, reqs, 5)
	assert.Equal(t, "sum-a\nsum-b\nsum-c\nsum-d", testutil.PromptPayload(reqs[4]))
}

func TestReducer_PooledMapLogsPoolStats(t *testing.T) {
	hook := test.NewLocal(logger.Logger)
	level := logger.Logger.GetLevel()
	logger.Logger.SetLevel(logrus.DebugLevel)
	t.Cleanup(func() {
		logger.Logger.SetLevel(level)
		logger.Logger.ReplaceHooks(make(logrus.LevelHooks))
	})

	model := &testutil.FakeModel{Respond: echoFirstRune}
	reducer := NewReducer(NewSummarizer(model, 0), DefaultSummarizationOptions().WithMapWorkers(2))

	_, err := reducer.Summarize(context.Background(), fourChunkText())
	require.NoError(t, err)

	var entry *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "Map step finished" {
			entry = e
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, 2, entry.Data["workers"])
	assert.Equal(t, int64(4), entry.Data["total_jobs"])
	assert.Equal(t, int64(4), entry.Data["completed_jobs"])
	assert.Equal(t, int64(0), entry.Data["active_workers"])
}

func TestReducer_MapFailureFailsWhole(t *testing.T) {
	boom := errors.New("429 too many requests")

	for _, workers := range []int{1, 3} {
		model := &testutil.FakeModel{Respond: func(n int, req llm.Request) (string, error) {
			if strings.HasPrefix(testutil.PromptPayload(req), "c") {
				return "", boom
			}
			return echoFirstRune(n, req)
		}}
		opts := DefaultSummarizationOptions().WithMapWorkers(workers)
		reducer := NewReducer(NewSummarizer(model, 0), opts)

		got, err := reducer.Summarize(context.Background(), fourChunkText())
		require.Error(t, err, "workers=%d", workers)
		assert.Empty(t, got)
		assert.ErrorIs(t, err, boom)

		var chunkErr *ChunkError
		require.ErrorAs(t, err, &chunkErr)
		assert.Equal(t, 2, chunkErr.Index)
		assert.Equal(t, 4, chunkErr.Total)

		for _, req := range model.Requests() {
			assert.False(t, strings.HasPrefix(testutil.PromptPayload(req), "sum-"), "reduce must not run after a map failure")
		}
	}
}
