package modules

import (
	"expvar"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

// BuildInfo is published as the "service" expvar next to the counters.
type BuildInfo struct {
	App    string `json:"app"`
	Env    string `json:"env"`
	Store  string `json:"store"`
	Policy string `json:"order_policy"`
}

var publishOnce sync.Once

// DebugModule serves expvar counters to private networks only.
type DebugModule struct {
	Limiter *middleware.Limiter
	Info    BuildInfo
}

func NewDebugModule(limiter *middleware.Limiter, info BuildInfo) *DebugModule {
	return &DebugModule{Limiter: limiter, Info: info}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	started := time.Now()
	info := m.Info
	// expvar names are process-global and may only be published once
	publishOnce.Do(func() {
		expvar.Publish("service", expvar.Func(func() any {
			return map[string]any{
				"info":           info,
				"uptime_seconds": int64(time.Since(started).Seconds()),
			}
		}))
	})

	rl := m.Limiter.Limit(middleware.Rule{Name: "debug", Max: 120, Window: time.Minute, Key: middleware.KeyByIP()})
	rg.GET("/debug/vars", middleware.OnlyIf(middleware.AllowPrivateIP()), rl, gin.WrapH(expvar.Handler()))
}
