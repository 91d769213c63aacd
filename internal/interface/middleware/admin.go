package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/internal/domain/entity"
	repo "github.com/oksasatya/go-storefront/internal/domain/repository"
	"github.com/oksasatya/go-storefront/pkg/response"
)

// RequireAdmin loads the signed-in user and rejects anyone who is not an administrator.
// It must run after RequireSignIn.
func RequireAdmin(users repo.UserRepository, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserIDKey)
		if uid == "" {
			if logger != nil {
				logger.WithField("path", c.FullPath()).Error("RequireAdmin mounted without RequireSignIn")
			}
			response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		u, err := users.GetByID(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				response.Abort(c, http.StatusUnauthorized, "User not found", "user_not_found")
				return
			}
			if logger != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"request_id": c.GetString(CtxRequestIDKey),
					"user_id":    uid,
				}).Error("admin check lookup failed")
			}
			response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		if !u.IsAdmin() {
			response.Abort(c, http.StatusForbidden, "Unauthorized access", "insufficient_privilege")
			return
		}
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// CurrentUser returns the identity stored by RequireAdmin.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}
