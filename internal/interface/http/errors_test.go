package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/pkg/payment"
)

func TestStatusAndMessageFor(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{&application.ValidationError{Field: "name", Message: "Name is required"}, http.StatusBadRequest, "Name is required"},
		{application.ErrDuplicateEmail, http.StatusBadRequest, "Already registered, please login"},
		{application.ErrEmailNotFound, http.StatusNotFound, "Email is not registered"},
		{application.ErrInvalidPassword, http.StatusUnauthorized, "Invalid password"},
		{application.ErrNoMatch, http.StatusNotFound, "Wrong email or answer"},
		{application.ErrInsufficientPrivilege, http.StatusForbidden, "Unauthorized access"},
		{fmt.Errorf("%w: Cancel -> Shipped", application.ErrInvalidTransition), http.StatusConflict, "Order status cannot change from its current state"},
		{fmt.Errorf("%w: card declined", application.ErrPaymentFailed), http.StatusPaymentRequired, "Payment failed"},
		{fmt.Errorf("sale: %w", payment.ErrUnavailable), http.StatusServiceUnavailable, "Payment service temporarily unavailable"},
		{fmt.Errorf("%w: conn reset", application.ErrOrderNotSaved), http.StatusInternalServerError, "Payment successful but order could not be saved"},
		{errors.New("pool exhausted"), http.StatusInternalServerError, "Something went wrong"},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			assert.Equal(t, tc.status, statusFor(tc.err))
			assert.Equal(t, tc.message, messageFor(tc.err))
		})
	}
}

func TestWriteErrorHidesCauseAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&logs)
	logger.SetFormatter(&logrus.JSONFormatter{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set("request_id", "req-1")

	writeError(c, logger, "list orders", errors.New("dial tcp 10.0.0.5:5432: refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Something went wrong", body["message"])
	assert.Equal(t, "req-1", body["request_id"])
	assert.Contains(t, logs.String(), `"request_id":"req-1"`)
	assert.Contains(t, logs.String(), "10.0.0.5")
}

func TestWriteErrorValidationDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	writeError(c, nil, "register", &application.ValidationError{Field: "phone", Message: "Phone number is required"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error map[string]string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"phone": "Phone number is required"}, body.Error)
}
