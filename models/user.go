package models

import (
	"time"
)

// UserRole defines allowed roles in the system
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleWaiter   UserRole = "waiter"
	RoleKitchen  UserRole = "kitchen"
	RoleCashier  UserRole = "cashier"
	RoleStaff    UserRole = "staff"
	RoleAdmin    UserRole = "admin"
)

// AllRoles lists every role a user may hold
var AllRoles = []UserRole{RoleCustomer, RoleWaiter, RoleKitchen, RoleCashier, RoleStaff, RoleAdmin}

// StaffRoles see every order instead of only their own
var StaffRoles = []UserRole{RoleAdmin, RoleStaff, RoleWaiter, RoleKitchen, RoleCashier}

// Valid reports whether r is one of the known roles
func (r UserRole) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// IsStaff reports whether r belongs to the staff set
func (r UserRole) IsStaff() bool {
	for _, s := range StaffRoles {
		if r == s {
			return true
		}
	}
	return false
}

// ActiveByDefault: customers can log in right away, everyone else waits for an admin
func (r UserRole) ActiveByDefault() bool {
	return r == "" || r == RoleCustomer
}

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         UserRole  `json:"role" gorm:"not null;default:'customer'"`
	IsActive     bool      `json:"isActive" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserRef is the reduced user shape embedded in orders
type UserRef struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TableName points the reduced shape at the users table for preloading
func (UserRef) TableName() string { return "users" }
