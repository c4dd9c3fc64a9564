package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// lookupLimiter throttles dictionary lookups per chat
type lookupLimiter struct {
	mu     sync.Mutex
	every  time.Duration
	burst  int
	limits map[int64]*rate.Limiter
}

func newLookupLimiter(every time.Duration, burst int) *lookupLimiter {
	return &lookupLimiter{
		every:  every,
		burst:  burst,
		limits: make(map[int64]*rate.Limiter),
	}
}

// getLimiter gets or creates a limiter for the given chat
func (l *lookupLimiter) getLimiter(chatID int64) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limits[chatID]; ok {
		return limiter
	}
	limiter := rate.NewLimiter(rate.Every(l.every), l.burst)
	l.limits[chatID] = limiter
	return limiter
}

// Allow reports whether the chat may look a word up now
func (l *lookupLimiter) Allow(chatID int64) bool {
	return l.getLimiter(chatID).Allow()
}
