package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/application"
	"github.com/oksasatya/go-storefront/internal/domain/entity"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/pkg/response"
	"github.com/oksasatya/go-storefront/pkg/validation"
)

type OrderHandler struct {
	Svc    *application.OrderService
	Logger *logrus.Logger
}

func NewOrderHandler(svc *application.OrderService, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{Svc: svc, Logger: logger}
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

type searchOrdersQuery struct {
	Status string `form:"status" binding:"omitempty,orderstatus"`
	Buyer  string `form:"buyer" binding:"omitempty,uuid"`
	Size   int    `form:"size" binding:"omitempty,gte=1,lte=100"`
}

// Orders GET /api/auth/orders
func (h *OrderHandler) Orders(c *gin.Context) {
	orders, err := h.Svc.ListOrdersForBuyer(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		writeError(c, h.Logger, "list_orders", err)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders", map[string]any{"count": len(orders)})
}

// AllOrders GET /api/auth/all-orders
func (h *OrderHandler) AllOrders(c *gin.Context) {
	orders, err := h.Svc.ListAllOrders(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, "list_all_orders", err)
		return
	}
	response.Success(c, http.StatusOK, orders, "all orders", map[string]any{"count": len(orders)})
}

// Search GET /api/auth/orders/search?status=&buyer=&size=
func (h *OrderHandler) Search(c *gin.Context) {
	var q searchOrdersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid query", validation.ToDetails(err))
		return
	}
	orders, err := h.Svc.SearchOrders(c.Request.Context(), application.OrderQuery{Status: q.Status, BuyerID: q.Buyer, Size: q.Size})
	if err != nil {
		writeError(c, h.Logger, "search_orders", err)
		return
	}
	response.Success(c, http.StatusOK, orders, "orders", map[string]any{"count": len(orders)})
}

// UpdateStatus PUT /api/auth/order-status/:orderId
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req orderStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		writeError(c, h.Logger, "update_order_status", application.ErrInsufficientPrivilege)
		return
	}
	o, err := h.Svc.Transition(c.Request.Context(), actor, c.Param("orderId"), req.Status)
	if err != nil {
		writeError(c, h.Logger, "update_order_status", err)
		return
	}
	response.Success[*entity.Order](c, http.StatusOK, o, "Order status updated", nil)
}

// ValidOrderStatus backs the "orderstatus" binding tag.
func ValidOrderStatus(fl validator.FieldLevel) bool {
	_, ok := entity.ParseOrderStatus(fl.Field().String())
	return ok
}
