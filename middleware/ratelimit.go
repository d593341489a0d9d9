package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"docuchat-backend/internal/config"
	"docuchat-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware limits requests per client IP with an in-process
// token bucket. Per-IP limiters are created lazily and pruned when
// idle; single-process deployment means no shared counter is needed.
func RateLimitMiddleware(cfg *config.Config) gin.HandlerFunc {
	limit := rate.Limit(float64(cfg.RateLimitReqs) / float64(cfg.RateLimitWindow))
	burst := cfg.RateLimitReqs

	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	// Prune limiters for IPs idle longer than three windows.
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.RateLimitWindow) * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-3 * time.Duration(cfg.RateLimitWindow) * time.Second)
			mu.Lock()
			for ip, cl := range clients {
				if cl.lastSeen.Before(cutoff) {
					delete(clients, ip)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		// Skip rate limiting for health checks
		if c.FullPath() == "/health" {
			c.Next()
			return
		}

		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			cl = &client{limiter: rate.NewLimiter(limit, burst)}
			clients[ip] = cl
		}
		cl.lastSeen = time.Now()
		mu.Unlock()

		if !cl.limiter.Allow() {
			c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RateLimitReqs))
			c.Header("X-RateLimit-Remaining", "0")

			utils.RespondWithError(c, http.StatusTooManyRequests,
				"rate_limit_exceeded",
				"Too many requests. Please try again later.",
				gin.H{
					"retry_after": cfg.RateLimitWindow,
					"limit":       cfg.RateLimitReqs,
				})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RateLimitReqs))
		c.Next()
	}
}
