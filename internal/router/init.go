package router

import (
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-storefront/internal/container"
	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
	"github.com/oksasatya/go-storefront/internal/router/modules"
	"github.com/oksasatya/go-storefront/pkg/validation"
)

// InitModules builds the handlers from c and registers every module.
// It should be called once during application startup.
func InitModules(r *Registry, c *container.Container) {
	validation.Init(map[string]validator.Func{"orderstatus": handlers.ValidOrderStatus})

	rdb := c.Redis
	if !c.Cfg.RateLimitEnabled {
		rdb = nil
	}
	limiter := middleware.NewLimiter(rdb, c.Cfg.AppName, c.Logger)
	guards := modules.Guards{
		SignIn: middleware.RequireSignIn(c.JWT, c.Logger),
		Admin:  middleware.RequireAdmin(c.Users, c.Logger),
	}

	r.Add(modules.NewHealthModule(c.Ping, c.Cfg.StoreDriver))
	r.Add(modules.NewAuthModule(
		handlers.NewAuthHandler(c.Auth, c.Logger),
		handlers.NewUserHandler(c.Auth, c.Logger),
		guards, limiter,
	))
	r.Add(modules.NewOrderModule(handlers.NewOrderHandler(c.OrderSvc, c.Logger), guards))
	r.Add(modules.NewPaymentModule(handlers.NewPaymentHandler(c.OrderSvc, c.Gateway, c.Mock, c.Logger), guards, limiter))
	if c.Cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(limiter, modules.BuildInfo{
			App:    c.Cfg.AppName,
			Env:    c.Cfg.Env,
			Store:  c.Cfg.StoreDriver,
			Policy: c.OrderSvc.Policy.Name(),
		}))
	}
}
