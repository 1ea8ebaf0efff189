package events

import (
	"context"

	"restaurant-pos-api/metrics"

	"go.uber.org/multierr"
)

//go:generate mockgen -source=publisher.go -destination=mock_publisher.go -package=events

// Publisher delivers an order event somewhere
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Fanout publishes to every publisher and combines their errors
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt Event) error {
	var err error
	for _, p := range f {
		err = multierr.Append(err, p.Publish(ctx, evt))
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.EventsPublished.WithLabelValues(string(evt.Type), outcome).Inc()
	return err
}

// Discard drops every event
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }
