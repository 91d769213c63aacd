package middleware

import (
	"expvar"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-storefront/pkg/response"
)

var (
	rateLimited      = expvar.NewInt("http_rate_limited_total")
	rateLimitBackend = expvar.NewInt("http_rate_limit_errors_total")
)

// KeyFunc picks the bucket a request counts against.
type KeyFunc func(c *gin.Context) string

// AllowFunc reports whether a request bypasses a rule.
type AllowFunc func(c *gin.Context) bool

// KeyByIP buckets callers by client address.
func KeyByIP() KeyFunc {
	return func(c *gin.Context) string { return "ip:" + clientIP(c) }
}

// KeyByUserID buckets signed-in callers by user id and anonymous ones by address.
func KeyByUserID() KeyFunc {
	return func(c *gin.Context) string {
		if uid := c.GetString(CtxUserIDKey); uid != "" {
			return "user:" + uid
		}
		return "ip:" + clientIP(c)
	}
}

// Rule is a fixed-window quota: at most Max requests per Window for each key.
type Rule struct {
	Name   string
	Max    int
	Window time.Duration
	Key    KeyFunc
	Skip   AllowFunc
}

// INCR and PEXPIRE on the first hit of a window, returning count and remaining ms
var windowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("PTTL", KEYS[1])}
`)

// Limiter enforces Rules with counters in Redis. A nil client disables every
// rule, and Redis failures let the request through.
type Limiter struct {
	rdb    *redis.Client
	prefix string
	logger *logrus.Logger
}

func NewLimiter(rdb *redis.Client, prefix string, logger *logrus.Logger) *Limiter {
	return &Limiter{rdb: rdb, prefix: prefix, logger: logger}
}

// Enabled reports whether quotas are enforced.
func (l *Limiter) Enabled() bool {
	return l != nil && l.rdb != nil
}

// Limit returns a handler enforcing rule. Responses carry X-RateLimit-*
// headers, and Retry-After once the quota is spent.
func (l *Limiter) Limit(rule Rule) gin.HandlerFunc {
	if !l.Enabled() || rule.Max <= 0 || rule.Window <= 0 || rule.Key == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || (rule.Skip != nil && rule.Skip(c)) {
			c.Next()
			return
		}

		key := l.prefix + ":rl:" + rule.Name + ":" + rule.Key(c)
		res, err := windowScript.Run(c.Request.Context(), l.rdb, []string{key}, rule.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			rateLimitBackend.Add(1)
			if l.logger != nil {
				l.logger.WithError(err).WithField("rule", rule.Name).Warn("rate limit check failed, allowing request")
			}
			c.Next()
			return
		}
		count, ttlMs := int(res[0]), res[1]
		resetSec := 0
		if ttlMs > 0 {
			resetSec = int((ttlMs + 999) / 1000)
		}

		remaining := rule.Max - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.Itoa(resetSec))

		if count > rule.Max {
			rateLimited.Add(1)
			if resetSec > 0 {
				c.Header("Retry-After", strconv.Itoa(resetSec))
			}
			if l.logger != nil {
				l.logger.WithFields(logrus.Fields{
					"rule":       rule.Name,
					"request_id": c.GetString(CtxRequestIDKey),
				}).Debug("rate limited")
			}
			response.Abort(c, http.StatusTooManyRequests, "rate limit exceeded", "rate_limited")
			return
		}
		c.Next()
	}
}
