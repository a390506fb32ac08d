// 包 middleware：入口级限流
package middleware

import (
	"net/http"
	"sync"
	"time"

	"territory-api/internal/logger"
)

// 文档注释：令牌桶限流中间件（每秒）
// 背景：在流量峰值时对入口进行限速，避免快照渲染与缓存后端被过载。
// 约束：简化实现，不做队列排队，仅丢弃并返回 429。
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	now      func() time.Time
	mu       sync.Mutex
}

func NewTokenBucket(qps int) *TokenBucket {
	tb := &TokenBucket{capacity: qps, tokens: qps, now: time.Now}
	tb.lastSec = tb.now().Unix()
	return tb
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Wrap：enabled 为 false 或 qps 非正时原样返回 next
func Wrap(next http.Handler, enabled bool, qps int) http.Handler {
	if !enabled || qps <= 0 {
		return next
	}
	logger.L().Info("ratelimit_enabled", "qps", qps)
	return Limit(next, NewTokenBucket(qps))
}

func Limit(next http.Handler, tb *TokenBucket) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			w.Header().Set("retry-after", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
