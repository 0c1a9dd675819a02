package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"fleetmon/internal/config"
	"fleetmon/internal/logger"
	"fleetmon/internal/metrics"
)

// ErrConsumerClosed is returned when Run is called on a closed consumer.
var ErrConsumerClosed = errors.New("consumer is closed")

// Update is one telemetry update message from the feed. Messages are JSON
// objects keyed by vehicle id.
type Update struct {
	VehicleID   int     `json:"id"`
	Speed       float64 `json:"speed"`
	Temperature float64 `json:"temperature"`
	Fuel        float64 `json:"fuel"`
}

// Consumer reads telemetry updates from a Kafka topic and forwards them to
// the applier channel. It is the external-updater role of the system: it only
// ever produces field writes, never reads aggregates.
type Consumer struct {
	reader *kafka.Reader
	out    chan<- Update
	closed atomic.Bool

	messagesRead atomic.Uint64
	decodeErrors atomic.Uint64
}

// NewConsumer creates a consumer for the configured topic. When no group id
// is configured an ephemeral one is generated, so a fresh monitor starts from
// the latest offsets instead of replaying history.
func NewConsumer(cfg config.FeedConfig, out chan<- Update) *Consumer {
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "fleetmon-" + uuid.New().String()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     groupID,
		Topic:       cfg.Topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
		StartOffset: kafka.LastOffset,
	})

	return &Consumer{
		reader: reader,
		out:    out,
	}
}

// Run consumes until the context is cancelled. Decode failures are counted
// and skipped; they never stop the feed.
func (c *Consumer) Run(ctx context.Context) error {
	if c.closed.Load() {
		return ErrConsumerClosed
	}

	log := logger.WithComponent("feed_consumer")
	log.Info().
		Str("topic", c.reader.Config().Topic).
		Str("group_id", c.reader.Config().GroupID).
		Msg("feed consumer started")

	for {
		start := time.Now()
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				log.Info().Msg("feed consumer stopped")
				return nil
			}
			return fmt.Errorf("read feed message: %w", err)
		}
		metrics.FeedFetchDuration.Observe(time.Since(start).Seconds())
		c.messagesRead.Add(1)

		var u Update
		if err := json.Unmarshal(msg.Value, &u); err != nil {
			log.Warn().
				Err(err).
				Int64("offset", msg.Offset).
				Msg("undecodable feed message skipped")
			c.decodeErrors.Add(1)
			metrics.FeedMessagesTotal.WithLabelValues("decode_error").Inc()
			continue
		}
		metrics.FeedMessagesTotal.WithLabelValues("ok").Inc()

		select {
		case c.out <- u:
		case <-ctx.Done():
			return nil
		}
	}
}

// Close shuts down the underlying reader. Safe to call more than once.
func (c *Consumer) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.reader.Close()
}

// Stats returns consumer counters.
func (c *Consumer) Stats() ConsumerStats {
	return ConsumerStats{
		MessagesRead: c.messagesRead.Load(),
		DecodeErrors: c.decodeErrors.Load(),
	}
}

// ConsumerStats holds feed consumer counters.
type ConsumerStats struct {
	MessagesRead uint64
	DecodeErrors uint64
}
