package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/config"
)

// RateLimitMiddleware limits requests per client IP. A nil manager disables limiting.
func RateLimitMiddleware(manager *RateLimitManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil || shouldBypassRateLimit(c.Request) {
			c.Next()
			return
		}

		limiter := manager.RequestLimiter(
			c.ClientIP(),
			cfg.RateLimitRequests,
			cfg.RateLimitPeriod(),
			cfg.RateLimitBurst,
		)
		if limiter != nil && !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests, please try again later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// MutationRateLimitMiddleware applies a stricter budget to writes.
func MutationRateLimitMiddleware(manager *RateLimitManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if manager == nil || !isMutation(c.Request.Method) {
			c.Next()
			return
		}

		perWindow := cfg.RateLimitRequests / 2
		if perWindow < 1 && cfg.RateLimitRequests > 0 {
			perWindow = 1
		}

		limiter := manager.MutationLimiter(c.ClientIP(), perWindow, cfg.RateLimitPeriod(), cfg.RateLimitBurst)
		if limiter != nil && !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many changes, please slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func shouldBypassRateLimit(r *http.Request) bool {
	if r == nil || r.URL == nil {
		return false
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/health", "/metrics":
		return true
	}

	return false
}
