package observer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []AnalysisEvent
}

func (o *recordingObserver) OnEvent(_ context.Context, e AnalysisEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) GetObserverName() string { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(context.Context, AnalysisEvent) { panic("boom") }
func (panickingObserver) GetObserverName() string                { return "panicking" }

func TestEventPublisher_NotifyObservers(t *testing.T) {
	p := NewEventPublisher()
	first := &recordingObserver{name: "first"}
	second := &recordingObserver{name: "second"}
	p.Subscribe(first)
	p.Subscribe(panickingObserver{})
	p.Subscribe(second)

	p.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisReceived, URL: "https://example.com"})

	require.Len(t, first.events, 1)
	require.Len(t, second.events, 1)
	assert.False(t, second.events[0].Timestamp.IsZero())

	p.Unsubscribe(first)
	p.NotifyObservers(context.Background(), AnalysisEvent{EventType: AnalysisCompleted})
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 2)
}

func TestMetricsObserver_GetMetrics(t *testing.T) {
	m := NewMetricsObserver()
	ctx := context.Background()

	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisReceived})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisClassified, ContentKind: "pdf"})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisPersistSkipped})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, ProcessingTime: 40 * time.Millisecond})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisReceived})
	m.OnEvent(ctx, AnalysisEvent{EventType: AnalysisFailed, ErrorType: "unsupported_content"})

	metrics := m.GetMetrics()
	assert.Equal(t, int64(2), metrics["total_analyses"])
	assert.Equal(t, int64(1), metrics["successful_analyses"])
	assert.Equal(t, int64(1), metrics["failed_analyses"])
	assert.Equal(t, int64(1), metrics["skipped_persists"])
	assert.Equal(t, int64(40), metrics["avg_processing_time_ms"])
	assert.Equal(t, map[string]int64{"pdf": 1}, metrics["analyses_by_kind"])
	assert.Equal(t, map[string]int64{"unsupported_content": 1}, metrics["failures_by_type"])
}

func TestLoggingObserver_Levels(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	o := NewLoggingObserver(logger)

	o.OnEvent(context.Background(), AnalysisEvent{EventType: AnalysisPersistSkipped, URL: "u"})
	o.OnEvent(context.Background(), AnalysisEvent{EventType: AnalysisFailed, URL: "u", ErrorType: "fetch", ErrorMessage: "down"})

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.WarnLevel, entries[0].Level)
	assert.Equal(t, logrus.ErrorLevel, entries[1].Level)
	assert.Equal(t, "down", entries[1].Data["error"])
}

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.messages = append(w.messages, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaObserver_PublishesTerminalEvents(t *testing.T) {
	logger, _ := test.NewNullLogger()
	w := &fakeWriter{}
	o := newKafkaObserver(w, logger)
	ctx := context.Background()

	o.OnEvent(ctx, AnalysisEvent{EventType: AnalysisReceived, URL: "https://example.com/a"})
	o.OnEvent(ctx, AnalysisEvent{EventType: AnalysisCompleted, URL: "https://example.com/a", ContentKind: "image"})
	o.OnEvent(ctx, AnalysisEvent{EventType: AnalysisFailed, URL: "https://example.com/b"})

	require.Len(t, w.messages, 2)
	assert.Equal(t, []byte("https://example.com/a"), w.messages[0].Key)
	assert.Contains(t, string(w.messages[0].Value), `"content_kind":"image"`)
	assert.Equal(t, "event_type", w.messages[1].Headers[0].Key)
	assert.Equal(t, []byte(AnalysisFailed), w.messages[1].Headers[0].Value)

	require.NoError(t, o.Close())
	assert.True(t, w.closed)
}

func TestKafkaObserver_WriteErrorIsLogged(t *testing.T) {
	logger, hook := test.NewNullLogger()
	o := newKafkaObserver(&fakeWriter{err: errors.New("broker down")}, logger)

	o.OnEvent(context.Background(), AnalysisEvent{EventType: AnalysisCompleted, URL: "u"})

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
