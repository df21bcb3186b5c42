package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "urwallet/internal/errors"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter is a token bucket per authenticated user.
type UserRateLimiter struct {
	perMinute int
	now       func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastPrune time.Time
}

// NewUserRateLimiter allows perMinute requests per user with a burst of the
// same size. perMinute <= 0 disables limiting.
func NewUserRateLimiter(perMinute int) *UserRateLimiter {
	return &UserRateLimiter{
		perMinute: perMinute,
		now:       time.Now,
		visitors:  make(map[string]*visitor),
	}
}

func (l *UserRateLimiter) reserve(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > limiterIdleTTL {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(l.visitors, k)
			}
		}
		l.lastPrune = now
	}

	v, ok := l.visitors[key]
	if !ok {
		every := rate.Every(time.Minute / time.Duration(l.perMinute))
		v = &visitor{limiter: rate.NewLimiter(every, l.perMinute)}
		l.visitors[key] = v
	}
	v.lastSeen = now

	r := v.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Middleware limits requests by the authenticated user id, falling back to
// the client IP. It must run after AuthMiddleware.
func (l *UserRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.perMinute <= 0 {
			c.Next()
			return
		}

		key := c.GetString(UserIDKey)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		allowed, retryAfter := l.reserve(key)
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(apperrors.ErrRateLimited.StatusCode, errorBody(apperrors.ErrRateLimited))
			return
		}
		c.Next()
	}
}
