package events

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisRelay shares order events between API instances. Publish sends to a
// redis channel; Run feeds every message on that channel, including this
// instance's own, into the local broker.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	local   Publisher
	log     *zap.Logger
}

func NewRedisRelay(rdb *redis.Client, channel string, local Publisher, log *zap.Logger) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: channel, local: local, log: log}
}

func (r *RedisRelay) Publish(ctx context.Context, evt Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	return errors.Wrap(r.rdb.Publish(ctx, r.channel, payload).Err(), "redis publish")
}

// Run blocks until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return errors.Wrap(err, "redis subscribe")
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var evt Event
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				r.log.Warn("Dropping malformed order event", zap.Error(err))
				continue
			}
			if err := r.local.Publish(ctx, evt); err != nil {
				r.log.Warn("Local relay failed", zap.String("event_id", evt.ID), zap.Error(err))
			}
		}
	}
}
