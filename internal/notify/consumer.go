package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/segmentio/kafka-go"

	"github.com/gameswap/exchange/internal/logger"
	"github.com/gameswap/exchange/internal/metrics"
)

// Handler reacts to decoded notification events. One method per event type:
// the consumer's dispatch switch is exhaustive over the closed type set, so a
// new event type cannot be added without giving it a handler method.
type Handler interface {
	HandleCredentialChanged(ctx context.Context, payload CredentialChangedPayloadV1) error
	HandleOfferCreated(ctx context.Context, payload OfferPayloadV1) error
	HandleOfferAccepted(ctx context.Context, payload OfferPayloadV1) error
	HandleOfferRejected(ctx context.Context, payload OfferPayloadV1) error
}

// MessageReader abstracts the underlying stream reader for testing
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer drains the notification stream and hands each event to its
// handler. An offset is committed only after the handler succeeds, so the
// channel's at-least-once semantics carry through to delivery; a bounded
// cache of recently-handled idempotency keys absorbs redeliveries.
//
// Group commits are per-partition watermarks, not per-message acks:
// committing a later offset implicitly acknowledges everything before it. A
// message that cannot be handled therefore stops the consumer instead of
// being skipped, otherwise the next successful commit would silently drop it.
type Consumer struct {
	reader  MessageReader
	handler Handler
	seen    *lru.Cache[string, struct{}]
}

// NewConsumer creates a Kafka-backed consumer in the given consumer group.
func NewConsumer(brokers []string, topic, groupID string, dedupeSize int, handler Handler) (*Consumer, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	return NewConsumerWithReader(reader, dedupeSize, handler)
}

// NewConsumerWithReader creates a consumer around an existing reader
func NewConsumerWithReader(reader MessageReader, dedupeSize int, handler Handler) (*Consumer, error) {
	seen, err := lru.New[string, struct{}](dedupeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create dedupe cache: %w", err)
	}
	return &Consumer{reader: reader, handler: handler, seen: seen}, nil
}

// Run consumes until the context is cancelled or a message fails to process.
// The current message is always handled to completion before the loop observes
// cancellation, so shutdown never abandons an event mid-delivery. A processing
// failure is fatal: the offset stays uncommitted and the error is returned, so
// a restart resumes at the failed message instead of committing past it.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				logger.Info(LogMsgConsumerStopped)
				return nil
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := c.process(ctx, msg); err != nil {
			return err
		}
	}
}

// process handles one message. The offset advances only past messages that
// were handled (or recognized as redeliveries by the dedupe cache); any other
// outcome is an error so Run halts with the offset still pointing at the
// failed message.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) error {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Error(ErrMsgFailedToDecodeEvent, "offset", msg.Offset, "error", err)
		return fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
	}

	if !event.Type.Known() {
		logger.Error(LogMsgUnknownEventType, "type", event.Type, "key", event.Key, "offset", msg.Offset)
		return fmt.Errorf("unknown event type %q at offset %d", event.Type, msg.Offset)
	}

	idempotencyKey := event.Key + "|" + string(event.Type)
	if _, dup := c.seen.Get(idempotencyKey); dup {
		metrics.EventsDeduplicated.WithLabelValues(string(event.Type)).Inc()
		logger.Info(LogMsgDuplicateEvent, "type", event.Type, "key", event.Key)
		c.commit(ctx, msg, event)
		return nil
	}

	if err := c.dispatch(ctx, event); err != nil {
		metrics.EventHandlerErrors.WithLabelValues(string(event.Type)).Inc()
		logger.Error(LogMsgEventHandlerFailed, "type", event.Type, "key", event.Key, "error", err)
		return fmt.Errorf("failed to handle %s event %q: %w", event.Type, event.Key, err)
	}

	c.seen.Add(idempotencyKey, struct{}{})
	metrics.EventsHandled.WithLabelValues(string(event.Type)).Inc()
	logger.Info(LogMsgEventHandled, "type", event.Type, "key", event.Key)
	c.commit(ctx, msg, event)
	return nil
}

func (c *Consumer) dispatch(ctx context.Context, event Event) error {
	switch event.Type {
	case CredentialChanged:
		payload, err := DecodePayload[CredentialChangedPayloadV1](event)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
		}
		return c.handler.HandleCredentialChanged(ctx, payload)
	case OfferCreated:
		payload, err := DecodePayload[OfferPayloadV1](event)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
		}
		return c.handler.HandleOfferCreated(ctx, payload)
	case OfferAccepted:
		payload, err := DecodePayload[OfferPayloadV1](event)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
		}
		return c.handler.HandleOfferAccepted(ctx, payload)
	case OfferRejected:
		payload, err := DecodePayload[OfferPayloadV1](event)
		if err != nil {
			return fmt.Errorf("%s: %w", ErrMsgFailedToDecodeEvent, err)
		}
		return c.handler.HandleOfferRejected(ctx, payload)
	default:
		return fmt.Errorf("unhandled event type %q", event.Type)
	}
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, event Event) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		logger.Error(LogMsgCommitFailed, "type", event.Type, "key", event.Key, "error", err)
	}
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
