package models

import "time"

// OrderStatus represents the kitchen-facing state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusServed    OrderStatus = "served"
	StatusCancelled OrderStatus = "cancelled"
)

var AllOrderStatuses = []OrderStatus{StatusPending, StatusPreparing, StatusReady, StatusServed, StatusCancelled}

func (s OrderStatus) Valid() bool {
	for _, known := range AllOrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func (p PaymentStatus) Valid() bool {
	return p == PaymentUnpaid || p == PaymentPaid
}

type PaymentMethod string

const (
	MethodCash        PaymentMethod = "Cash"
	MethodCard        PaymentMethod = "Card"
	MethodMobileMoney PaymentMethod = "Mobile Money"
	MethodOther       PaymentMethod = "Other"
)

var AllPaymentMethods = []PaymentMethod{MethodCash, MethodCard, MethodMobileMoney, MethodOther}

func (m PaymentMethod) Valid() bool {
	for _, known := range AllPaymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

type Order struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	UserID        uint          `json:"userId" gorm:"index;not null"`
	User          *UserRef      `json:"user,omitempty" gorm:"foreignKey:UserID;-:migration"`
	Items         []OrderItem   `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount   float64       `json:"totalAmount" gorm:"not null"`
	Status        OrderStatus   `json:"status" gorm:"index;not null;default:'pending'"`
	PaymentStatus PaymentStatus `json:"paymentStatus" gorm:"not null;default:'unpaid'"`
	PaymentMethod PaymentMethod `json:"paymentMethod" gorm:"not null;default:'Cash'"`
	TableNumber   string        `json:"tableNumber,omitempty"`
	CustomerName  string        `json:"customerName,omitempty"`
	Revision      int           `json:"revision" gorm:"not null;default:1"`
	CreatedAt     time.Time     `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// OrderItem is a line item. Price is the snapshot taken when the line was
// written and is never re-read from the menu.
type OrderItem struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"-" gorm:"index;not null"`
	MenuItemID uint      `json:"menuItemId" gorm:"index;not null"`
	MenuItem   *MenuItem `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemID"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Price      float64   `json:"price" gorm:"not null"`
}

// OrderStatusHistory tracks every status change
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    uint        `json:"orderId" gorm:"index;not null"`
	FromStatus OrderStatus `json:"fromStatus"`
	ToStatus   OrderStatus `json:"toStatus" gorm:"not null"`
	ChangedBy  uint        `json:"changedBy"`
	CreatedAt  time.Time   `json:"createdAt"`
}
