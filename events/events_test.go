package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"restaurant-pos-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestBrokerDeliversToAllSubscribers(t *testing.T) {
	b := NewBroker(4)
	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	evt := New(OrderCreated, models.Order{ID: 7, Status: models.StatusPending}, 1)
	require.NoError(t, b.Publish(context.Background(), evt))

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, evt.ID, got.ID)
			assert.Equal(t, uint(7), got.OrderID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}

	cancel1()
	cancel1()
	assert.Equal(t, 1, b.Subscribers())
	_, open := <-ch1
	assert.False(t, open)
}

func TestBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewBroker(1)
	ch, cancel := b.Subscribe()
	defer cancel()

	ctx := context.Background()
	require.NoError(t, b.Publish(ctx, Event{ID: "a"}))
	require.NoError(t, b.Publish(ctx, Event{ID: "b"}))

	got := <-ch
	assert.Equal(t, "a", got.ID)
	select {
	case extra := <-ch:
		t.Fatalf("unexpected event %s", extra.ID)
	default:
	}
}

func TestFanoutCombinesErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	ok := NewMockPublisher(ctrl)
	failing := NewMockPublisher(ctrl)

	evt := Event{ID: "x", Type: OrderUpdated}
	ok.EXPECT().Publish(gomock.Any(), evt).Return(nil)
	failing.EXPECT().Publish(gomock.Any(), evt).Return(errors.New("broker down"))

	err := Fanout{ok, failing}.Publish(context.Background(), evt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestKafkaMessageKeyedByOrder(t *testing.T) {
	evt := New(OrderUpdated, models.Order{ID: 42, Status: models.StatusReady}, 3)
	msg, err := kafkaMessage(evt)
	require.NoError(t, err)
	assert.Equal(t, []byte("42"), msg.Key)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, models.StatusReady, decoded.Status)
	assert.Equal(t, Producer, decoded.Producer)
}
