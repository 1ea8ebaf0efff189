// Package events carries order lifecycle notifications to the kitchen feed
// and to downstream consumers.
package events

import (
	"strconv"
	"time"

	"restaurant-pos-api/models"

	"github.com/google/uuid"
)

type Type string

const (
	OrderCreated Type = "order.created"
	OrderUpdated Type = "order.updated"
	OrderDeleted Type = "order.deleted"
)

// Producer identifies this service in emitted events
const Producer = "restaurant-pos-api"

type Event struct {
	ID            string               `json:"id"`
	Type          Type                 `json:"type"`
	OrderID       uint                 `json:"orderId"`
	Status        models.OrderStatus   `json:"status,omitempty"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus,omitempty"`
	TotalAmount   float64              `json:"totalAmount"`
	TableNumber   string               `json:"tableNumber,omitempty"`
	ActorID       uint                 `json:"actorId"`
	OccurredAt    time.Time            `json:"occurredAt"`
	Producer      string               `json:"producer"`
}

// New builds an event describing order as of now
func New(t Type, order models.Order, actorID uint) Event {
	return Event{
		ID:            uuid.NewString(),
		Type:          t,
		OrderID:       order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		TableNumber:   order.TableNumber,
		ActorID:       actorID,
		OccurredAt:    time.Now().UTC(),
		Producer:      Producer,
	}
}

// PartitionKey keeps every event of one order on the same partition
func PartitionKey(orderID uint) []byte {
	return []byte(strconv.FormatUint(uint64(orderID), 10))
}
