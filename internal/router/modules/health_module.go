package modules

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/pkg/response"
)

type HealthModule struct {
	Ping  func(ctx context.Context) error
	Store string
}

func NewHealthModule(ping func(ctx context.Context) error, store string) *HealthModule {
	return &HealthModule{Ping: ping, Store: store}
}

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/healthz", m.health)
}

func (m *HealthModule) health(c *gin.Context) {
	if m.Ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := m.Ping(ctx); err != nil {
			response.Error[any](c, http.StatusServiceUnavailable, "store unreachable", gin.H{"store": m.Store})
			return
		}
	}
	response.Success(c, http.StatusOK, gin.H{"store": m.Store}, "ok", nil)
}
