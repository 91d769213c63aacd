package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

type PaymentModule struct {
	Handler *handlers.PaymentHandler
	Guards  Guards
	Limiter *middleware.Limiter
}

func NewPaymentModule(h *handlers.PaymentHandler, guards Guards, limiter *middleware.Limiter) *PaymentModule {
	return &PaymentModule{Handler: h, Guards: guards, Limiter: limiter}
}

func (m *PaymentModule) Register(rg *gin.RouterGroup) {
	product := rg.Group("/product", m.Guards.SignIn)
	product.Use(m.Limiter.Limit(middleware.Rule{
		Name:   "checkout",
		Max:    30,
		Window: time.Minute,
		Key:    middleware.KeyByUserID(),
	}))
	{
		product.GET("/braintree/token", m.Handler.Token)
		product.POST("/braintree/payment", m.Handler.Payment)
		product.POST("/mock-payment", m.Handler.MockPayment)
	}
}
