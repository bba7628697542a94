// internal/interfaces/http/middleware/rate_limit.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/your-org/shopfront/internal/config"
	"github.com/your-org/shopfront/internal/interfaces/http/response"
)

// RateLimiter limits requests per client IP. The shared window lives in
// Redis; a local token bucket takes over when Redis is absent or failing.
type RateLimiter struct {
	redis *redis.Client
	limit int
	burst int
	log   logrus.FieldLogger

	mu    sync.Mutex
	local map[string]*rate.Limiter
}

// NewRateLimiter creates a limiter; redisClient may be nil
func NewRateLimiter(cfg *config.Config, redisClient *redis.Client, log logrus.FieldLogger) *RateLimiter {
	return &RateLimiter{
		redis: redisClient,
		limit: cfg.Security.RateLimitPerMinute,
		burst: cfg.Security.RateLimitBurst,
		log:   log,
		local: make(map[string]*rate.Limiter),
	}
}

// Handler returns the gin middleware
func (l *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit <= 0 {
			c.Next()
			return
		}

		clientIP := c.ClientIP()
		remaining, ok := l.allowShared(c.Request.Context(), clientIP)
		if !ok {
			c.Header("Retry-After", "60")
			response.Fail(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

func (l *RateLimiter) allowShared(ctx context.Context, clientIP string) (int, bool) {
	if l.redis == nil {
		return l.allowLocal(clientIP)
	}

	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	window := time.Now().Unix() / 60
	key := fmt.Sprintf("rate_limit:%s:%d", clientIP, window)

	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		l.log.WithError(err).Warn("Rate limit store unavailable, using local limiter")
		return l.allowLocal(clientIP)
	}

	count := int(incr.Val())
	if count > l.limit {
		return 0, false
	}
	return l.limit - count, true
}

func (l *RateLimiter) allowLocal(clientIP string) (int, bool) {
	l.mu.Lock()
	limiter, ok := l.local[clientIP]
	if !ok {
		burst := l.burst
		if burst <= 0 {
			burst = l.limit
		}
		limiter = rate.NewLimiter(rate.Limit(float64(l.limit)/60), burst)
		l.local[clientIP] = limiter
	}
	l.mu.Unlock()

	if !limiter.Allow() {
		return 0, false
	}
	return int(limiter.Tokens()), true
}
