package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/payment"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// PaymentHandler runs checkout against the hosted gateway or the mock one.
type PaymentHandler struct {
	Orders  *application.OrderService
	Gateway payment.Gateway
	Mock    payment.Gateway
	Logger  *logrus.Logger
}

func NewPaymentHandler(orders *application.OrderService, gw, mock payment.Gateway, logger *logrus.Logger) *PaymentHandler {
	return &PaymentHandler{Orders: orders, Gateway: gw, Mock: mock, Logger: logger}
}

type cartItemRequest struct {
	ProductID string  `json:"_id" binding:"required"`
	Price     float64 `json:"price" binding:"gte=0"`
	Quantity  int     `json:"quantity" binding:"gte=0"`
}

type cardRequest struct {
	Number string `json:"number" binding:"required,min=4,max=23"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
	Name   string `json:"name"`
}

type checkoutRequest struct {
	Cart        []cartItemRequest `json:"cart" binding:"dive"`
	Nonce       string            `json:"nonce"`
	CardDetails *cardRequest      `json:"cardDetails"`
}

func (r checkoutRequest) input(requireMethod bool) application.CheckoutInput {
	in := application.CheckoutInput{Nonce: r.Nonce, RequireMethod: requireMethod}
	for _, it := range r.Cart {
		in.Cart = append(in.Cart, application.CartItem{ProductID: it.ProductID, Price: it.Price, Quantity: it.Quantity})
	}
	if r.CardDetails != nil {
		in.Card = &payment.Card{
			Number: r.CardDetails.Number,
			Expiry: r.CardDetails.Expiry,
			CVV:    r.CardDetails.CVV,
			Name:   r.CardDetails.Name,
		}
	}
	return in
}

// Token GET /api/product/braintree/token
func (h *PaymentHandler) Token(c *gin.Context) {
	tok, err := h.Gateway.ClientToken(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, "payment_token", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"clientToken": tok}, "client token", nil)
}

// Payment POST /api/product/braintree/payment
func (h *PaymentHandler) Payment(c *gin.Context) {
	h.checkout(c, h.Gateway, true, "Payment successful")
}

// MockPayment POST /api/product/mock-payment
func (h *PaymentHandler) MockPayment(c *gin.Context) {
	h.checkout(c, h.Mock, false, "Mock payment successful")
}

func (h *PaymentHandler) checkout(c *gin.Context, gw payment.Gateway, requireMethod bool, message string) {
	var req checkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.Orders.Checkout(c.Request.Context(), gw, c.GetString(middleware.CtxUserIDKey), req.input(requireMethod))
	if err != nil {
		writeError(c, h.Logger, "checkout", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"order":         o,
		"result":        o.Payment,
		"transactionId": o.Payment.Transaction.ID,
	}, message, nil)
}
