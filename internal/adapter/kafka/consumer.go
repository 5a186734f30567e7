// Package kafka feeds ad events published by hosts into the engine.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"bat-ads/internal/core/domain"
	"bat-ads/internal/core/port"
)

// Reader is the part of *kafka.Reader the consumer uses.
type Reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventRecorder records one ad event.
type EventRecorder interface {
	RecordAdEvent(ctx context.Context, event domain.AdEvent) error
}

// NewReader returns a consumer group reader for topic.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
}

// Consumer is a driving adapter: it reads AdEvent JSON messages and records
// them. A message is committed once recorded or found unusable; storage
// failures keep retrying the same message.
type Consumer struct {
	reader  Reader
	svc     EventRecorder
	logger  *slog.Logger
	backoff time.Duration
}

// NewConsumer creates a consumer. backoff is the pause after a failed fetch
// or a transient recording failure.
func NewConsumer(reader Reader, svc EventRecorder, logger *slog.Logger, backoff time.Duration) *Consumer {
	if backoff <= 0 {
		backoff = time.Second
	}
	return &Consumer{reader: reader, svc: svc, logger: logger, backoff: backoff}
}

// Run consumes until ctx is cancelled, then closes the reader.
func (c *Consumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Warn("close kafka reader", slog.Any("error", err))
		}
	}()
	c.logger.Info("ad event consumer started")
	for {
		// FetchMessage rather than ReadMessage so offsets are only committed
		// after the event is stored
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("ad event consumer stopped")
				return nil
			}
			c.logger.Error("fetch message", slog.Any("error", err))
			if !sleep(ctx, c.backoff) {
				return nil
			}
			continue
		}

		if !c.process(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit message", slog.Int64("offset", msg.Offset), slog.Any("error", err))
		}
	}
}

// process returns false when ctx ended before the message was handled.
func (c *Consumer) process(parent context.Context, msg kafka.Message) bool {
	var event domain.AdEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("skip undecodable ad event",
			slog.Int("partition", msg.Partition),
			slog.Int64("offset", msg.Offset),
			slog.Any("error", err),
		)
		return true
	}

	carrier := headerCarrier{headers: &msg.Headers}
	ctx := otel.GetTextMapPropagator().Extract(parent, carrier)

	for {
		err := c.svc.RecordAdEvent(ctx, event)
		switch {
		case err == nil:
			return true
		case errors.Is(err, port.ErrInvalidRequest):
			c.logger.Error("skip invalid ad event",
				slog.String("placement_id", event.PlacementID),
				slog.Any("error", err),
			)
			return true
		case parent.Err() != nil:
			return false
		}
		c.logger.Warn("record ad event, retrying",
			slog.String("placement_id", event.PlacementID),
			slog.Any("error", err),
		)
		if !sleep(parent, c.backoff) {
			return false
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
