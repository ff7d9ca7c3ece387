package worker

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter throttles submission intake, one token bucket per exercise
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter. A non-positive rate disables throttling.
func NewLimiter(submissionsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(submissionsPerSecond)
	if submissionsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until the exercise may take another submission
func (l *Limiter) Wait(ctx context.Context, exerciseID int64) error {
	return l.getLimiter(exerciseKey(exerciseID)).Wait(ctx)
}

// Allow reports whether a submission may be taken now without waiting
func (l *Limiter) Allow(exerciseID int64) bool {
	return l.getLimiter(exerciseKey(exerciseID)).Allow()
}

func (l *Limiter) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter
	return limiter
}

func exerciseKey(exerciseID int64) string {
	return "exercise:" + strconv.FormatInt(exerciseID, 10)
}
