package httpmiddleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// staleAfter is how long an idle client's bucket survives before pruning.
const staleAfter = 10 * time.Minute

// SimpleTokenBucket is an in-memory per-client rate limiter. Each client gets
// a bucket holding up to burst tokens, refilled continuously at rate tokens
// per minute. Single-instance only; a multi-instance deployment would need
// the counters in redis.
type SimpleTokenBucket struct {
	burst float64
	rate  float64 // tokens per minute

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewSimpleTokenBucket creates a limiter allowing bursts of burst requests
// and a sustained perMinute rate.
func NewSimpleTokenBucket(burst, perMinute int) *SimpleTokenBucket {
	if burst <= 0 {
		burst = perMinute
	}
	return &SimpleTokenBucket{
		burst:   float64(burst),
		rate:    float64(perMinute),
		buckets: make(map[string]*bucket),
	}
}

// GinMiddleware returns a gin handler enforcing the per-IP limit.
func (l *SimpleTokenBucket) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = "unknown"
		}
		if !l.allow(ip, time.Now()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit"})
			return
		}
		c.Next()
	}
}

func (l *SimpleTokenBucket) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		l.prune(now)
		l.buckets[key] = &bucket{tokens: l.burst - 1, last: now}
		return true
	}

	b.tokens += now.Sub(b.last).Minutes() * l.rate
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// prune drops buckets idle long enough to be full again. Called with mu held.
func (l *SimpleTokenBucket) prune(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > staleAfter {
			delete(l.buckets, key)
		}
	}
}
