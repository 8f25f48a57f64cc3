package middleware

import (
	"strconv"
	"sync"
	"time"

	"pingup/backend/pkg/errors"
	"pingup/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterOptions configures the rate limiter
type RateLimiterOptions struct {
	// Limit is the sustained number of requests per second
	Limit rate.Limit
	Burst int
	// IdleTTL drops limiter state for keys not seen for this long
	IdleTTL time.Duration
	// KeyFunc extracts the limiting key from a request
	KeyFunc func(*gin.Context) string
}

func DefaultRateLimiterOptions() RateLimiterOptions {
	return RateLimiterOptions{
		Limit:   5,
		Burst:   10,
		IdleTTL: time.Hour,
		KeyFunc: ByClientIP,
	}
}

func ByClientIP(c *gin.Context) string { return c.ClientIP() }

// ByUser keys on the authenticated subject, falling back to the client IP
func ByUser(c *gin.Context) string {
	if id := CurrentUser(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key
type RateLimiter struct {
	mu       sync.Mutex
	opts     RateLimiterOptions
	visitors map[string]*visitor
	log      *logger.Logger
	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(log *logger.Logger, opts RateLimiterOptions) *RateLimiter {
	if opts.KeyFunc == nil {
		opts.KeyFunc = ByClientIP
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if log == nil {
		log = logger.GetGlobal()
	}
	r := &RateLimiter{
		opts:     opts,
		visitors: make(map[string]*visitor),
		log:      log,
		stop:     make(chan struct{}),
	}
	if opts.IdleTTL > 0 {
		go r.sweep()
	}
	return r
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	burst := strconv.Itoa(r.opts.Burst)
	return func(c *gin.Context) {
		key := r.opts.KeyFunc(c)
		if r.limiter(key).Allow() {
			c.Next()
			return
		}

		r.log.Warn("Rate limit exceeded",
			"key", key,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
		)
		c.Header("Retry-After", "1")
		c.Header("X-RateLimit-Limit", burst)
		c.Error(errors.NewTooManyRequestsError(errors.CodeRateLimitExceeded, "Too many requests. Please try again later."))
		c.Abort()
	}
}

func (r *RateLimiter) limiter(key string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.opts.Limit, r.opts.Burst)}
		r.visitors[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

func (r *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			for k, v := range r.visitors {
				if time.Since(v.lastSeen) > r.opts.IdleTTL {
					delete(r.visitors, k)
				}
			}
			r.mu.Unlock()
		case <-r.stop:
			return
		}
	}
}

// Close stops the idle sweeper
func (r *RateLimiter) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}
