package observer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// messageWriter is the subset of *kafka.Writer the observer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaObserver publishes terminal analysis events (completed or failed) to
// a Kafka topic, keyed by URL so events for one resource share a partition.
type KafkaObserver struct {
	writer  messageWriter
	logger  *logrus.Logger
	timeout time.Duration
}

// NewKafkaObserver creates an asynchronous writer for topic on brokers.
func NewKafkaObserver(brokers []string, topic string, logger *logrus.Logger) *KafkaObserver {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.WithError(err).WithField("count", len(messages)).Warn("Failed to publish analysis events")
			}
		},
	}
	return newKafkaObserver(writer, logger)
}

func newKafkaObserver(w messageWriter, logger *logrus.Logger) *KafkaObserver {
	return &KafkaObserver{writer: w, logger: logger, timeout: 2 * time.Second}
}

func (o *KafkaObserver) OnEvent(ctx context.Context, event AnalysisEvent) {
	if event.EventType != AnalysisCompleted && event.EventType != AnalysisFailed {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		o.logger.WithError(err).Warn("Failed to encode analysis event")
		return
	}

	// the request context may already be cancelled once the response is written
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.URL),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
		Time: event.Timestamp,
	}
	if err := o.writer.WriteMessages(writeCtx, msg); err != nil {
		o.logger.WithError(err).WithField("url", event.URL).Warn("Failed to publish analysis event")
	}
}

func (o *KafkaObserver) GetObserverName() string {
	return "kafka_observer"
}

func (o *KafkaObserver) Close() error {
	return o.writer.Close()
}
