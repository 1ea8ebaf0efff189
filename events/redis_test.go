package events

import (
	"context"
	"testing"
	"time"

	"restaurant-pos-api/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRedisRelayFeedsLocalBroker(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	broker := NewBroker(4)
	events, cancel := broker.Subscribe()
	defer cancel()

	relay := NewRedisRelay(rdb, "pos:orders", broker, zap.NewNop())
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("pos:orders")["pos:orders"] == 1
	}, time.Second, 10*time.Millisecond)

	evt := New(OrderCreated, models.Order{ID: 9, Status: models.StatusPending, TotalAmount: 12.5}, 2)
	require.NoError(t, relay.Publish(context.Background(), evt))

	select {
	case got := <-events:
		assert.Equal(t, evt.ID, got.ID)
		assert.Equal(t, OrderCreated, got.Type)
		assert.Equal(t, uint(9), got.OrderID)
		assert.Equal(t, 12.5, got.TotalAmount)
	case <-time.After(2 * time.Second):
		t.Fatal("relayed event not delivered")
	}

	// malformed payloads are dropped and the relay keeps running
	require.NoError(t, rdb.Publish(context.Background(), "pos:orders", "not json").Err())
	select {
	case extra := <-events:
		t.Fatalf("unexpected event %s", extra.ID)
	case <-time.After(100 * time.Millisecond):
	}

	stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}
}
