package application

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail        = errors.New("already registered, please login")
	ErrEmailNotFound         = errors.New("email is not registered")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrNoMatch               = errors.New("wrong email or answer")
	ErrPasswordTooShort      = errors.New("password must be at least 6 characters")
	ErrUserNotFound          = errors.New("user not found")
	ErrInsufficientPrivilege = errors.New("unauthorized access")
	ErrUnknownStatus         = errors.New("unknown order status")
	ErrOrderNotFound         = errors.New("order not found")
	ErrInvalidTransition     = errors.New("invalid order status transition")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrPaymentMethodRequired = errors.New("payment method is required")
	ErrPaymentFailed         = errors.New("payment failed")
	ErrPaymentNotConfigured  = errors.New("payment gateway not configured")
	ErrOrderNotSaved         = errors.New("payment successful but order could not be saved")
)

// MinPasswordLen is the shortest password accepted on profile update.
const MinPasswordLen = 6

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func required(field, label string) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf("%s is required", label)}
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
