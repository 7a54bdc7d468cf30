package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/response"
)

// RateLimiter limits requests per client IP to rate per interval. With a
// Redis client the window is shared across instances; without one each
// process keeps its own token buckets.
type RateLimiter struct {
	rdb      *redis.Client
	log      zerolog.Logger
	rate     int
	interval time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	tokens   int
	lastSeen time.Time
}

// NewRateLimiter creates a RateLimiter (e.g., 10 requests per minute).
// rdb may be nil.
func NewRateLimiter(rdb *redis.Client, rate int, interval time.Duration, log zerolog.Logger) *RateLimiter {
	rl := &RateLimiter{
		rdb:      rdb,
		log:      log.With().Str("component", "rate_limiter").Logger(),
		rate:     rate,
		interval: interval,
		visitors: make(map[string]*visitor),
	}

	if rdb == nil {
		go func() {
			for range time.Tick(time.Minute) {
				rl.cleanup()
			}
		}()
	}
	return rl
}

// Middleware returns a Gin middleware that rate-limits requests by IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c, c.ClientIP()) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(c *gin.Context, ip string) bool {
	if rl.rdb == nil {
		return rl.allowLocal(ip)
	}

	key := config.CacheKey.LoginAttemptsKey(ip)
	pipe := rl.rdb.TxPipeline()
	incr := pipe.Incr(c.Request.Context(), key)
	pipe.ExpireNX(c.Request.Context(), key, rl.interval)
	if _, err := pipe.Exec(c.Request.Context()); err != nil {
		// Fall back to the local buckets.
		rl.log.Warn().Err(err).Msg("Rate limit counter unavailable")
		return rl.allowLocal(ip)
	}
	return incr.Val() <= int64(rl.rate)
}

func (rl *RateLimiter) allowLocal(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{tokens: rl.rate, lastSeen: time.Now()}
		rl.visitors[ip] = v
	}

	elapsed := time.Since(v.lastSeen)
	if refill := int(elapsed/rl.interval) * rl.rate; refill > 0 {
		v.tokens = min(v.tokens+refill, rl.rate)
		v.lastSeen = time.Now()
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, v := range rl.visitors {
		if time.Since(v.lastSeen) > 3*rl.interval {
			delete(rl.visitors, ip)
		}
	}
}
