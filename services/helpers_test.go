package services

import (
	"testing"
	"time"

	"restaurant-pos-api/config"
	"restaurant-pos-api/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := config.OpenDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newOrderService(t *testing.T, db *gorm.DB) *OrderService {
	return NewOrderService(db, nil, zap.NewNop(), time.UTC)
}

func newAccounts(db *gorm.DB) *AccountService {
	return NewAccountService(db).WithHashCost(bcrypt.MinCost)
}

func seedUser(t *testing.T, db *gorm.DB, name string, role models.UserRole) models.User {
	t.Helper()
	u := models.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role, IsActive: true}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func seedCategory(t *testing.T, db *gorm.DB, name string) models.Category {
	t.Helper()
	c := models.Category{Name: name}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func seedMenuItem(t *testing.T, db *gorm.DB, name string, price float64, categoryID uint) models.MenuItem {
	t.Helper()
	m := models.MenuItem{Name: name, Description: name, Price: price, CategoryID: categoryID, IsAvailable: true, Image: models.DefaultMenuImage}
	require.NoError(t, db.Create(&m).Error)
	return m
}

// seedOrder inserts an order directly, bypassing the service, at a fixed time
func seedOrder(t *testing.T, db *gorm.DB, userID uint, status models.OrderStatus, at time.Time, lines ...models.OrderItem) models.Order {
	t.Helper()
	o := models.Order{
		UserID:        userID,
		Items:         lines,
		TotalAmount:   OrderTotal(lines),
		Status:        status,
		PaymentStatus: models.PaymentUnpaid,
		PaymentMethod: models.MethodCash,
		Revision:      1,
		CreatedAt:     at.UTC(),
		UpdatedAt:     at.UTC(),
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}

func line(item models.MenuItem, qty int) models.OrderItem {
	return models.OrderItem{MenuItemID: item.ID, Quantity: qty, Price: item.Price}
}

func caller(u models.User) Caller {
	return Caller{ID: u.ID, Role: u.Role}
}
