package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/pkg/payment"
	"github.com/oksasatya/go-storefront/pkg/response"
	"github.com/oksasatya/go-storefront/pkg/validation"
)

// statusFor maps an application error to its HTTP status.
func statusFor(err error) int {
	switch {
	case application.IsValidation(err),
		errors.Is(err, application.ErrPasswordTooShort),
		errors.Is(err, application.ErrUnknownStatus),
		errors.Is(err, application.ErrEmptyCart),
		errors.Is(err, application.ErrPaymentMethodRequired),
		errors.Is(err, application.ErrDuplicateEmail):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrInvalidPassword):
		return http.StatusUnauthorized
	case errors.Is(err, application.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, application.ErrInsufficientPrivilege):
		return http.StatusForbidden
	case errors.Is(err, application.ErrEmailNotFound),
		errors.Is(err, application.ErrNoMatch),
		errors.Is(err, application.ErrOrderNotFound),
		errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, payment.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client-facing message for err.
func messageFor(err error) string {
	var ve *application.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, application.ErrDuplicateEmail):
		return "Already registered, please login"
	case errors.Is(err, application.ErrEmailNotFound):
		return "Email is not registered"
	case errors.Is(err, application.ErrInvalidPassword):
		return "Invalid password"
	case errors.Is(err, application.ErrNoMatch):
		return "Wrong email or answer"
	case errors.Is(err, application.ErrPasswordTooShort):
		return "Password must be at least 6 characters long"
	case errors.Is(err, application.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, application.ErrInsufficientPrivilege):
		return "Unauthorized access"
	case errors.Is(err, application.ErrUnknownStatus):
		return "Invalid order status"
	case errors.Is(err, application.ErrOrderNotFound):
		return "Order not found"
	case errors.Is(err, application.ErrInvalidTransition):
		return "Order status cannot change from its current state"
	case errors.Is(err, application.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, application.ErrPaymentMethodRequired):
		return "Payment method is required"
	case errors.Is(err, application.ErrPaymentFailed):
		return "Payment failed"
	case errors.Is(err, application.ErrPaymentNotConfigured), errors.Is(err, payment.ErrNotConfigured):
		return "Payment gateway is not configured"
	case errors.Is(err, application.ErrOrderNotSaved):
		return "Payment successful but order could not be saved"
	case errors.Is(err, payment.ErrUnavailable):
		return "Payment service temporarily unavailable"
	default:
		return "Something went wrong"
	}
}

// writeError renders err in the response envelope. Server errors are logged
// with the request id and never expose their cause.
func writeError(c *gin.Context, logger *logrus.Logger, action string, err error) {
	status := statusFor(err)
	var detail any
	var ve *application.ValidationError
	if errors.As(err, &ve) {
		detail = map[string]string{ve.Field: ve.Message}
	}
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"action":     action,
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	response.Error[any](c, status, messageFor(err), detail)
}

// bindJSON decodes the body into obj. An empty body leaves obj zeroed so the
// service reports which field is missing.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}
