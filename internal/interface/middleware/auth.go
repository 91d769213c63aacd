package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/pkg/helpers"
	"github.com/oksasatya/go-storefront/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxUserKey   = "user"
)

// Reason codes returned in the error field of a rejected request.
const (
	ReasonNoToken        = "no_token"
	ReasonMalformedToken = "malformed_token"
	ReasonInvalidToken   = "invalid_token"
	ReasonExpiredToken   = "expired_token"
)

// RequireSignIn validates the bearer token and sets userID in the Gin context.
func RequireSignIn(jwt *helpers.JWTManager, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			response.Abort(c, http.StatusUnauthorized, "No token provided", ReasonNoToken)
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Abort(c, http.StatusUnauthorized, "Invalid token format", ReasonMalformedToken)
			return
		}
		sub, err := jwt.Verify(parts[1])
		if err != nil {
			reason := ReasonInvalidToken
			if errors.Is(err, helpers.ErrTokenExpired) {
				reason = ReasonExpiredToken
			}
			if logger != nil {
				logger.WithError(err).WithFields(logrus.Fields{
					"request_id": c.GetString(CtxRequestIDKey),
					"reason":     reason,
				}).Debug("token rejected")
			}
			response.Abort(c, http.StatusUnauthorized, "Token is invalid or expired", reason)
			return
		}
		c.Set(CtxUserIDKey, sub)
		c.Next()
	}
}
