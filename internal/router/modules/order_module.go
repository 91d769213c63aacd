package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
)

// OrderModule serves buyer order history and the administrator order desk.
type OrderModule struct {
	Handler *handlers.OrderHandler
	Guards  Guards
}

func NewOrderModule(h *handlers.OrderHandler, guards Guards) *OrderModule {
	return &OrderModule{Handler: h, Guards: guards}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth", m.Guards.SignIn)
	auth.GET("/orders", m.Handler.Orders)

	admin := auth.Group("", m.Guards.Admin)
	{
		admin.GET("/all-orders", m.Handler.AllOrders)
		admin.GET("/orders/search", m.Handler.Search)
		admin.PUT("/order-status/:orderId", m.Handler.UpdateStatus)
	}
}
