package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/config"
)

// limiterIdleTTL is how long an unused per-user limiter is kept.
const limiterIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per authenticated user. It must run
// after AuthMiddleware; requests without a user ID pass through.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu          sync.Mutex
	limiters    map[uuid.UUID]*userLimiter
	lastCleanup time.Time
}

// NewRateLimiter builds a limiter from configuration. A zero rate disables it.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(cfg.RequestsPerSecond),
		burst:    burst,
		now:      time.Now,
		limiters: make(map[uuid.UUID]*userLimiter),
	}
}

// Enabled reports whether requests are limited at all.
func (rl *RateLimiter) Enabled() bool {
	return rl.limit > 0
}

// Allow consumes one token for userID at the current time.
func (rl *RateLimiter) Allow(userID uuid.UUID) bool {
	if !rl.Enabled() {
		return true
	}
	now := rl.now()
	return rl.getLimiter(userID, now).AllowN(now, 1)
}

func (rl *RateLimiter) getLimiter(userID uuid.UUID, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) > limiterIdleTTL {
		for id, ul := range rl.limiters {
			if now.Sub(ul.lastSeen) > limiterIdleTTL {
				delete(rl.limiters, id)
			}
		}
		rl.lastCleanup = now
	}

	ul, ok := rl.limiters[userID]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[userID] = ul
	}
	ul.lastSeen = now
	return ul.limiter
}

// Len returns the number of tracked users.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

// Middleware rejects requests over the user's budget with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := shared.UserIDFromContext(r.Context())
		if !ok || rl.Allow(userID) {
			next.ServeHTTP(w, r)
			return
		}

		retryAfter := 1
		if rl.limit > 0 {
			retryAfter = int(math.Ceil(1 / float64(rl.limit)))
		}
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
	})
}
