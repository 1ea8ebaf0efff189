// Package services holds the order lifecycle, reporting, account and
// catalog logic behind the HTTP handlers.
package services

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a service error for the transport layer
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

// Error carries a user-facing message. Anything that is not an *Error is
// treated as an internal fault.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

var (
	ErrOrderNotFound    = &Error{Kind: KindNotFound, Msg: "Order not found"}
	ErrUserNotFound     = &Error{Kind: KindNotFound, Msg: "User not found"}
	ErrCategoryNotFound = &Error{Kind: KindNotFound, Msg: "Category not found"}
	ErrMenuItemNotFound = &Error{Kind: KindNotFound, Msg: "Menu item not found"}

	ErrStaleRevision = &Error{Kind: KindConflict, Msg: "Order was modified by someone else; reload and retry"}

	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Msg: "Invalid credentials"}
	ErrInactiveAccount    = &Error{Kind: KindUnauthorized, Msg: "Account is inactive. Please contact your admin."}

	ErrMissingCredentials = &Error{Kind: KindValidation, Msg: "Please provide an email and password"}
	ErrUserExists         = &Error{Kind: KindValidation, Msg: "User already exists"}
	ErrSelfRoleChange     = &Error{Kind: KindValidation, Msg: "You cannot change your own role"}
	ErrSelfDeactivate     = &Error{Kind: KindValidation, Msg: "You cannot deactivate your own account"}
	ErrSelfDelete         = &Error{Kind: KindValidation, Msg: "You cannot delete your own account"}
	ErrCategoryExists     = &Error{Kind: KindValidation, Msg: "Category already exists"}
)

// KindOf unwraps err to its service Kind
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
