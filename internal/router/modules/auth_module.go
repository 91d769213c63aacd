package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-storefront/internal/interface/http"
	"github.com/oksasatya/go-storefront/internal/interface/middleware"
)

type AuthModule struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Guards  Guards
	Limiter *middleware.Limiter
}

func NewAuthModule(auth *handlers.AuthHandler, user *handlers.UserHandler, guards Guards, limiter *middleware.Limiter) *AuthModule {
	return &AuthModule{Auth: auth, User: user, Guards: guards, Limiter: limiter}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// credential endpoints are throttled per client address
	perIP := func(name string, max int) gin.HandlerFunc {
		return m.Limiter.Limit(middleware.Rule{Name: name, Max: max, Window: time.Minute, Key: middleware.KeyByIP()})
	}

	auth := rg.Group("/auth")
	auth.POST("/register", perIP("register", 5), m.Auth.Register)
	auth.POST("/login", perIP("login", 10), m.Auth.Login)
	auth.POST("/forgot-password", perIP("forgot-password", 5), m.Auth.ForgotPassword)

	auth.GET("/user-auth", m.Guards.SignIn, m.User.UserAuth)
	auth.PUT("/profile", m.Guards.SignIn, m.User.UpdateProfile)

	auth.GET("/admin-auth", m.Guards.SignIn, m.Guards.Admin, m.Auth.AdminAuth)
}
