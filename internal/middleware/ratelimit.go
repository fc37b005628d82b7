package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/verdantlabs/verdant-backend/internal/config"
)

// NewRateLimiter returns a fixed-window per-IP limiter backed by redis.  It
// is applied to the auth endpoints, where credential stuffing is the concern.
// When the limiter is disabled, redis is unavailable, or a redis call fails
// mid-flight, requests pass through: rate limiting degrades, it never takes
// the API down with it.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	window := time.Duration(cfg.WindowSecs) * time.Second

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			bucket := time.Now().Unix() / int64(cfg.WindowSecs)
			key := fmt.Sprintf("rl:%s:%s:%d", c.Path(), c.RealIP(), bucket)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
				return next(c)
			}
			if n == 1 {
				// First hit in this window owns the expiry.
				_ = rdb.Expire(ctx, key, window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				c.Response().Header().Set("Retry-After", strconv.Itoa(cfg.WindowSecs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"error":       "too_many_requests",
					"retry_after": cfg.WindowSecs,
				})
			}
			return next(c)
		}
	}
}
