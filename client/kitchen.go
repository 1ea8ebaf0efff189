package client

import (
	"context"
	"sort"
	"time"

	"restaurant-pos-api/models"
	"restaurant-pos-api/statemachine"
)

// DefaultPollInterval is how often the kitchen display refreshes
const DefaultPollInterval = 10 * time.Second

// KitchenStatuses are the orders a kitchen display shows
var KitchenStatuses = []models.OrderStatus{models.StatusPending, models.StatusPreparing, models.StatusReady}

// Ticket is one kitchen display card
type Ticket struct {
	Order models.Order
	// Advance is the next usual status, empty if none
	Advance models.OrderStatus
}

// Board is the result of one poll
type Board struct {
	Tickets     []Ticket
	NewArrivals int
	PolledAt    time.Time
}

// OrderLister is the part of Client the poller needs
type OrderLister interface {
	Orders(ctx context.Context, q OrderQuery) ([]models.Order, error)
}

// KitchenPoller refreshes the kitchen display on a fixed interval
type KitchenPoller struct {
	orders   OrderLister
	interval time.Duration
	now      func() time.Time

	polled    bool
	lastCount int
}

func NewKitchenPoller(orders OrderLister, interval time.Duration) *KitchenPoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &KitchenPoller{orders: orders, interval: interval, now: time.Now}
}

// Poll fetches active orders oldest first. NewArrivals is how much the count
// grew since the previous poll and is always 0 on the first one.
func (p *KitchenPoller) Poll(ctx context.Context) (Board, error) {
	orders, err := p.orders.Orders(ctx, OrderQuery{Statuses: KitchenStatuses})
	if err != nil {
		return Board{}, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	board := Board{Tickets: make([]Ticket, 0, len(orders)), PolledAt: p.now()}
	for _, o := range orders {
		next, _ := statemachine.Next(o.Status)
		board.Tickets = append(board.Tickets, Ticket{Order: o, Advance: next})
	}
	if p.polled && len(orders) > p.lastCount {
		board.NewArrivals = len(orders) - p.lastCount
	}
	p.polled = true
	p.lastCount = len(orders)
	return board, nil
}

// Run polls immediately and then every interval until ctx is done. A failed
// poll is handed to onErr and the next tick tries again.
func (p *KitchenPoller) Run(ctx context.Context, onBoard func(Board), onErr func(error)) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		board, err := p.Poll(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return
		case err != nil:
			if onErr != nil {
				onErr(err)
			}
		default:
			onBoard(board)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
