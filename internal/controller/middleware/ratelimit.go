package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/abyansyah052/asisya-web-pipe-sub001/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// SubmitRateLimiter throttles submissions per participant. Throttling is a
// resource-protection measure, not a correctness mechanism: whenever the
// participant cannot be identified or the limiter state is unavailable the
// middleware fails open, because blocking a legitimate time-boxed submission
// is worse than letting a burst through.
type SubmitRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*participantLimiter
	limit    rate.Limit
	burst    int
}

type participantLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Bounds on the per-participant limiter map. Entries idle past the expiry
// are swept once the map reaches the cap, so the map cannot grow with one
// entry per distinct header value ever seen.
const (
	maxTrackedParticipants = 10000
	limiterIdleExpiry      = 10 * time.Minute
)

func NewSubmitRateLimiter(perSecond float64, burst int) *SubmitRateLimiter {
	return &SubmitRateLimiter{
		limiters: make(map[string]*participantLimiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *SubmitRateLimiter) limiterFor(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	entry, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedParticipants {
			l.evictIdle(now)
		}
		entry = &participantLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evictIdle drops entries not seen within limiterIdleExpiry. Caller holds mu.
func (l *SubmitRateLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > limiterIdleExpiry {
			delete(l.limiters, key)
		}
	}
}

func (l *SubmitRateLimiter) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		key := ctx.GetHeader("X-Participant-ID")
		if key == "" {
			// Fail open; the handler rejects unidentified callers itself.
			ctx.Next()
			return
		}
		if !l.limiterFor(key).Allow() {
			log.Warn().Str("participant", key).Str("path", ctx.FullPath()).Msg("Submission rate limit exceeded")
			ctx.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{Message: "Too many submissions, slow down"})
			return
		}
		ctx.Next()
	}
}
