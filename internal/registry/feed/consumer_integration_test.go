//go:build integration

package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketfactory/internal/platform/config"
	"marketfactory/internal/registry/feed"
	"marketfactory/internal/registry/models"
	"marketfactory/internal/registry/store"
	"marketfactory/pkg/testutil/containers"
)

func TestConsumerReplaysTopicIntoReplica(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	rp := containers.GetManager().GetRedpanda(t)
	topic := "markets-created-" + uuid.NewString()
	rp.CreateTopic(ctx, t, topic)
	rp.Produce(ctx, t, topic,
		[]byte(`{"market_id":"a.near"}`),
		[]byte(`not json but a raw id.near`),
		[]byte(``),
		[]byte(`"c.near"`),
	)

	replica := store.NewInMemoryStore()
	consumer, err := feed.NewConsumer(config.KafkaConfig{
		Brokers:  []string{rp.Broker},
		Topic:    topic,
		ClientID: "feed-test",
	}, replica)
	require.NoError(t, err)
	defer consumer.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Run(runCtx) }()

	require.Eventually(t, func() bool {
		n, _ := replica.Len(ctx)
		return n == 3
	}, time.Minute, 100*time.Millisecond)

	stop()
	require.NoError(t, <-done)

	all, err := replica.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.MarketID{"a.near", "not json but a raw id.near", "c.near"}, all)
}
