package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/gameswap/exchange/internal/domain"
	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/metrics"
)

// Publisher hands events to the notification stream.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// MessageWriter abstracts the underlying stream writer for testing
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer  MessageWriter
	timeout time.Duration
}

// NewPublisher creates a Kafka-backed publisher for the notification topic.
// Messages are keyed by the event key so the stream preserves per-trade order,
// and writes wait for acknowledgement from all replicas.
func NewPublisher(brokers []string, topic string, timeout time.Duration) Publisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &kafkaPublisher{writer: writer, timeout: timeout}
}

// NewPublisherWithWriter creates a publisher around an existing writer
func NewPublisherWithWriter(writer MessageWriter, timeout time.Duration) Publisher {
	return &kafkaPublisher{writer: writer, timeout: timeout}
}

// Publish serializes the event and writes it to the stream. The write is
// bounded by the publisher timeout; any failure maps to ErrChannel so callers
// can treat enqueue problems uniformly.
func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", ErrMsgFailedToEncodeEvent, domain.ErrChannel, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: data,
	}
	log := logger.FromContext(ctx)
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		metrics.EventPublishErrors.WithLabelValues(string(event.Type)).Inc()
		log.Error(LogMsgEventPublishFailed, "type", event.Type, "key", event.Key, "error", err)
		return fmt.Errorf("%s: %w: %v", ErrMsgFailedToWriteMessage, domain.ErrChannel, err)
	}

	metrics.EventsPublished.WithLabelValues(string(event.Type)).Inc()
	log.Debug(LogMsgEventPublished, "type", event.Type, "key", event.Key)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
