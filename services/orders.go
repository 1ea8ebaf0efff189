package services

import (
	"context"
	"time"

	"restaurant-pos-api/events"
	"restaurant-pos-api/metrics"
	"restaurant-pos-api/models"
	"restaurant-pos-api/statemachine"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Caller is the authenticated identity an operation runs as
type Caller struct {
	ID   uint
	Role models.UserRole
}

// LineInput is one requested line item. Price is the caller's snapshot; zero
// means "copy the current menu price".
type LineInput struct {
	MenuItem uint    `json:"menuItem" binding:"required"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
	Price    float64 `json:"price" binding:"gte=0"`
}

// CreateOrderInput omits user and totalAmount: both are always set server-side.
type CreateOrderInput struct {
	Items         []LineInput          `json:"items" binding:"required,min=1,dive"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"omitempty,payment_status"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"omitempty,payment_method"`
	TableNumber   string               `json:"tableNumber"`
	CustomerName  string               `json:"customerName"`
}

// UpdateOrderInput is a partial update; nil fields are left alone.
// Revision, when set, must match the stored revision.
type UpdateOrderInput struct {
	Items         *[]LineInput          `json:"items" binding:"omitempty,dive"`
	Status        *models.OrderStatus   `json:"status" binding:"omitempty,order_status"`
	PaymentStatus *models.PaymentStatus `json:"paymentStatus" binding:"omitempty,payment_status"`
	PaymentMethod *models.PaymentMethod `json:"paymentMethod" binding:"omitempty,payment_method"`
	TableNumber   *string               `json:"tableNumber"`
	CustomerName  *string               `json:"customerName"`
	Revision      *int                  `json:"revision"`
}

// OrderFilter narrows List. Filters combine with AND.
type OrderFilter struct {
	Statuses      []models.OrderStatus
	Date          string
	PaymentStatus models.PaymentStatus
	PaymentMethod models.PaymentMethod
}

type OrderService struct {
	db  *gorm.DB
	pub events.Publisher
	log *zap.Logger
	loc *time.Location
}

func NewOrderService(db *gorm.DB, pub events.Publisher, log *zap.Logger, loc *time.Location) *OrderService {
	if pub == nil {
		pub = events.Discard{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &OrderService{db: db, pub: pub, log: log, loc: loc}
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.MenuItem")
}

// Create places a new order owned by the caller
func (s *OrderService) Create(ctx context.Context, caller Caller, in CreateOrderInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, validationf("Order must contain at least one item")
	}
	if in.PaymentStatus == "" {
		in.PaymentStatus = models.PaymentUnpaid
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = models.MethodCash
	}
	if !in.PaymentStatus.Valid() {
		return nil, validationf("Invalid payment status '%s'", in.PaymentStatus)
	}
	if !in.PaymentMethod.Valid() {
		return nil, validationf("Invalid payment method '%s'", in.PaymentMethod)
	}

	lines, err := s.buildLines(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		UserID:        caller.ID,
		Items:         lines,
		TotalAmount:   OrderTotal(lines),
		Status:        models.StatusPending,
		PaymentStatus: in.PaymentStatus,
		PaymentMethod: in.PaymentMethod,
		TableNumber:   in.TableNumber,
		CustomerName:  in.CustomerName,
		Revision:      1,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusPending,
			ChangedBy: caller.ID,
		}).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	metrics.OrdersCreated.Inc()
	s.publish(ctx, events.OrderCreated, order, caller.ID)
	return s.load(ctx, order.ID)
}

// List returns orders newest first. Non-staff callers only ever see their own.
func (s *OrderService) List(ctx context.Context, caller Caller, f OrderFilter) ([]models.Order, error) {
	q := preloadOrder(s.db.WithContext(ctx).Model(&models.Order{}))

	if !caller.Role.IsStaff() {
		q = q.Where("user_id = ?", caller.ID)
	}

	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, validationf("Invalid status '%s'", st)
		}
	}
	switch len(f.Statuses) {
	case 0:
	case 1:
		q = q.Where("status = ?", f.Statuses[0])
	default:
		q = q.Where("status IN ?", f.Statuses)
	}

	if f.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", f.Date, s.loc)
		if err != nil {
			return nil, validationf("Invalid date '%s', expected YYYY-MM-DD", f.Date)
		}
		q = q.Where("created_at >= ? AND created_at < ?", day.UTC(), day.AddDate(0, 0, 1).UTC())
	}

	if f.PaymentStatus != "" {
		if !f.PaymentStatus.Valid() {
			return nil, validationf("Invalid payment status '%s'", f.PaymentStatus)
		}
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}
	if f.PaymentMethod != "" {
		if !f.PaymentMethod.Valid() {
			return nil, validationf("Invalid payment method '%s'", f.PaymentMethod)
		}
		q = q.Where("payment_method = ?", f.PaymentMethod)
	}

	orders := []models.Order{}
	if err := q.Order("created_at desc, id desc").Find(&orders).Error; err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Get returns one order, applying the same visibility rule as List
func (s *OrderService) Get(ctx context.Context, caller Caller, id uint) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Role.IsStaff() && order.UserID != caller.ID {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// Update merges a partial update. Replacing items recomputes the total.
func (s *OrderService) Update(ctx context.Context, caller Caller, id uint, in UpdateOrderInput) (*models.Order, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, validationf("Invalid status '%s'", *in.Status)
	}
	if in.PaymentStatus != nil && !in.PaymentStatus.Valid() {
		return nil, validationf("Invalid payment status '%s'", *in.PaymentStatus)
	}
	if in.PaymentMethod != nil && !in.PaymentMethod.Valid() {
		return nil, validationf("Invalid payment method '%s'", *in.PaymentMethod)
	}

	var lines []models.OrderItem
	if in.Items != nil {
		if len(*in.Items) == 0 {
			return nil, validationf("Order must contain at least one item")
		}
		var err error
		if lines, err = s.buildLines(ctx, *in.Items); err != nil {
			return nil, err
		}
	}

	var updated models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if in.Revision != nil && *in.Revision != order.Revision {
			return ErrStaleRevision
		}
		prev := order.Status

		changes := map[string]interface{}{"revision": gorm.Expr("revision + 1")}
		if in.Items != nil {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range lines {
				lines[i].OrderID = order.ID
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
			changes["total_amount"] = OrderTotal(lines)
		}
		if in.Status != nil {
			changes["status"] = *in.Status
		}
		if in.PaymentStatus != nil {
			changes["payment_status"] = *in.PaymentStatus
		}
		if in.PaymentMethod != nil {
			changes["payment_method"] = *in.PaymentMethod
		}
		if in.TableNumber != nil {
			changes["table_number"] = *in.TableNumber
		}
		if in.CustomerName != nil {
			changes["customer_name"] = *in.CustomerName
		}

		q := tx.Model(&models.Order{ID: order.ID})
		if in.Revision != nil {
			q = q.Where("revision = ?", *in.Revision)
		}
		res := q.Updates(changes)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleRevision
		}

		if in.Status != nil && *in.Status != prev {
			if !statemachine.IsUsual(prev, *in.Status) {
				s.log.Info("Order skipped the usual status progression",
					zap.Uint("order_id", order.ID),
					zap.String("from", string(prev)),
					zap.String("to", string(*in.Status)),
					zap.Any("usual", statemachine.Follows(prev)),
					zap.Uint("changed_by", caller.ID))
			}
			if err := tx.Create(&models.OrderStatusHistory{
				OrderID:    order.ID,
				FromStatus: prev,
				ToStatus:   *in.Status,
				ChangedBy:  caller.ID,
			}).Error; err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return nil, err
		}
		return nil, errors.Wrap(err, "update order")
	}

	order, err := s.load(ctx, updated.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.OrderUpdated, *order, caller.ID)
	return order, nil
}

// Delete hard-deletes an order with its lines and history
func (s *OrderService) Delete(ctx context.Context, caller Caller, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Order{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Where("order_id = ?", id).Delete(&models.OrderStatusHistory{}).Error
	})
	if err != nil {
		if KindOf(err) != KindInternal {
			return err
		}
		return errors.Wrap(err, "delete order")
	}
	s.publish(ctx, events.OrderDeleted, models.Order{ID: id}, caller.ID)
	return nil
}

// History returns the status changes of an order, oldest first
func (s *OrderService) History(ctx context.Context, caller Caller, id uint) ([]models.OrderStatusHistory, error) {
	if _, err := s.Get(ctx, caller, id); err != nil {
		return nil, err
	}
	history := []models.OrderStatusHistory{}
	if err := s.db.WithContext(ctx).Where("order_id = ?", id).Order("id").Find(&history).Error; err != nil {
		return nil, errors.Wrap(err, "order history")
	}
	return history, nil
}

func (s *OrderService) load(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := preloadOrder(s.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "load order")
	}
	return &order, nil
}

// buildLines checks every referenced menu item exists and snapshots prices.
// Availability is deliberately not checked.
func (s *OrderService) buildLines(ctx context.Context, in []LineInput) ([]models.OrderItem, error) {
	ids := make([]uint, 0, len(in))
	for _, l := range in {
		if l.MenuItem == 0 {
			return nil, validationf("Each item needs a menuItem")
		}
		if l.Quantity < 1 {
			return nil, validationf("Quantity must be at least 1")
		}
		if l.Price < 0 {
			return nil, validationf("Price cannot be negative")
		}
		ids = append(ids, l.MenuItem)
	}

	var items []models.MenuItem
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, errors.Wrap(err, "load menu items")
	}
	byID := make(map[uint]models.MenuItem, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	lines := make([]models.OrderItem, 0, len(in))
	for _, l := range in {
		item, ok := byID[l.MenuItem]
		if !ok {
			return nil, validationf("Menu item %d not found", l.MenuItem)
		}
		price := l.Price
		if price == 0 {
			price = item.Price
		}
		lines = append(lines, models.OrderItem{
			MenuItemID: item.ID,
			Quantity:   l.Quantity,
			Price:      price,
		})
	}
	return lines, nil
}

func (s *OrderService) publish(ctx context.Context, t events.Type, order models.Order, actor uint) {
	if err := s.pub.Publish(ctx, events.New(t, order, actor)); err != nil {
		s.log.Warn("Publishing order event failed",
			zap.String("type", string(t)), zap.Uint("order_id", order.ID), zap.Error(err))
	}
}
