package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"marketfactory/internal/platform/config"
	"marketfactory/internal/registry/metrics"
	"marketfactory/internal/registry/models"
)

// Appender is the write hook of the in-memory replica.
type Appender interface {
	Append(ctx context.Context, ids ...models.MarketID) error
}

// Consumer mirrors the factory's market-created topic into a replica.
//
// The replica lives in memory, so the consumer always replays the topic from
// the first offset and never commits: a restart rebuilds the full registry.
type Consumer struct {
	client   *kgo.Client
	appender Appender
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(c *Consumer)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Consumer) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Consumer) {
		c.metrics = m
	}
}

// NewConsumer creates a franz-go client reading cfg.Topic from the start.
func NewConsumer(cfg config.KafkaConfig, appender Appender, opts ...Option) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("feed requires at least one broker")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	c := &Consumer{
		client:   client,
		appender: appender,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Run polls until ctx is cancelled or the client is closed. Each fetch is
// appended as one batch in partition offset order.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "replication feed started")
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			c.logger.InfoContext(ctx, "replication feed stopped")
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.WarnContext(ctx, "feed fetch error",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		batch := make([]models.MarketID, 0, fetches.NumRecords())
		fetches.EachRecord(func(r *kgo.Record) {
			id, err := Decode(r.Value)
			if err != nil {
				c.logger.WarnContext(ctx, "feed record rejected",
					"partition", r.Partition,
					"offset", r.Offset,
					"error", err,
				)
				if c.metrics != nil {
					c.metrics.FeedRejected.Inc()
				}
				return
			}
			batch = append(batch, id)
		})
		if len(batch) == 0 {
			continue
		}

		if err := c.appender.Append(ctx, batch...); err != nil {
			return fmt.Errorf("append feed batch: %w", err)
		}
		if c.metrics != nil {
			c.metrics.FeedAppended.Add(float64(len(batch)))
		}
		c.logger.DebugContext(ctx, "feed batch applied", "markets", len(batch))
	}
}

// Close releases the Kafka client.
func (c *Consumer) Close() {
	c.client.Close()
}
