// Package metrics holds the prometheus collectors shared by the server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Number of HTTP requests handled, by method, route and status class.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency, by method, route and status class.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pos_orders_created_total",
		Help: "Number of orders created.",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pos_order_events_published_total",
		Help: "Order lifecycle events handed to publishers, by type and outcome.",
	}, []string{"type", "outcome"})
)
