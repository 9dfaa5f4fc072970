package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"project-tracker/pkg/utils"
)

type limiterEntry struct {
	limiter      *rate.Limiter
	lastSeenNano atomic.Int64
}

// RateLimiter 按客户端 IP 限流
type RateLimiter struct {
	limit    rate.Limit
	burst    int
	limiters sync.Map // ip -> *limiterEntry
	now      func() time.Time
}

func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{limit: rate.Limit(perSecond), burst: burst, now: time.Now}
}

func (r *RateLimiter) get(key string) *rate.Limiter {
	v, ok := r.limiters.Load(key)
	if !ok {
		v, _ = r.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(r.limit, r.burst)})
	}
	entry := v.(*limiterEntry)
	entry.lastSeenNano.Store(r.now().UnixNano())
	return entry.limiter
}

// Allow 供中间件与测试使用
func (r *RateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}
	return r.get(key).Allow()
}

// Sweep 清理超过 maxAge 未访问的限流器, 返回清理数量
func (r *RateLimiter) Sweep(maxAge time.Duration) int {
	cutoff := r.now().Add(-maxAge).UnixNano()
	removed := 0
	r.limiters.Range(func(key, value interface{}) bool {
		if value.(*limiterEntry).lastSeenNano.Load() < cutoff {
			r.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Middleware 超出速率返回 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.ClientIP()) {
			utils.ErrorWithCode(c, http.StatusTooManyRequests, "请求过于频繁, 请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
