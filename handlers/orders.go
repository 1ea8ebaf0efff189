package handlers

import (
	"io"
	"net/http"
	"time"

	"restaurant-pos-api/middleware"
	"restaurant-pos-api/models"
	"restaurant-pos-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// streamKeepAlive is how often an idle order stream sends a ping
const streamKeepAlive = 25 * time.Second

// CreateOrder places an order for the caller; any user or totalAmount in the
// body is ignored
func (h *Handler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	order, err := h.Orders.Create(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, order)
}

// ListOrders supports ?status= (repeatable), ?date=YYYY-MM-DD,
// ?paymentStatus= and ?paymentMethod=
func (h *Handler) ListOrders(c *gin.Context) {
	filter := services.OrderFilter{
		Date:          c.Query("date"),
		PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		PaymentMethod: models.PaymentMethod(c.Query("paymentMethod")),
	}
	for _, s := range c.QueryArray("status") {
		if s != "" {
			filter.Statuses = append(filter.Statuses, models.OrderStatus(s))
		}
	}

	orders, err := h.Orders.List(c.Request.Context(), middleware.Caller(c), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, orders, len(orders))
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, found := paramID(c, services.ErrOrderNotFound)
	if !found {
		return
	}
	order, err := h.Orders.Get(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, order)
}

// UpdateOrder merges a partial update. Replacing items recomputes the total
// and a stale revision yields 409.
func (h *Handler) UpdateOrder(c *gin.Context) {
	id, found := paramID(c, services.ErrOrderNotFound)
	if !found {
		return
	}
	var req services.UpdateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	order, err := h.Orders.Update(c.Request.Context(), middleware.Caller(c), id, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, found := paramID(c, services.ErrOrderNotFound)
	if !found {
		return
	}
	if err := h.Orders.Delete(c.Request.Context(), middleware.Caller(c), id); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{})
}

func (h *Handler) OrderHistory(c *gin.Context) {
	id, found := paramID(c, services.ErrOrderNotFound)
	if !found {
		return
	}
	history, err := h.Orders.History(c.Request.Context(), middleware.Caller(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	list(c, history, len(history))
}

// StreamOrders pushes order events as server-sent events until the client
// goes away
func (h *Handler) StreamOrders(c *gin.Context) {
	events, cancel := h.Broker.Subscribe()
	defer cancel()

	h.Log.Debug("Order stream opened",
		zap.Uint("user_id", middleware.GetUserID(c)),
		zap.Int("subscribers", h.Broker.Subscribers()))

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()
	ctx := c.Request.Context()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt, open := <-events:
			if !open {
				return false
			}
			c.SSEvent(string(evt.Type), evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
