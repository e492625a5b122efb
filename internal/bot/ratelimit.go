package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long a user bucket is kept after its last command.
const limiterIdleTTL = 10 * time.Minute

type userBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// userLimiter keeps one token bucket per Discord user.
type userLimiter struct {
	mu      sync.Mutex
	buckets map[string]*userBucket

	limit rate.Limit
	burst int
}

func newUserLimiter(perSecond float64, burst int) *userLimiter {
	return &userLimiter{
		buckets: map[string]*userBucket{},
		limit:   rate.Limit(perSecond),
		burst:   burst,
	}
}

func (l *userLimiter) Allow(userID string) bool {
	now := time.Now()

	l.mu.Lock()
	bucket, ok := l.buckets[userID]
	if !ok {
		bucket = &userBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[userID] = bucket
	}
	bucket.lastSeen = now
	l.mu.Unlock()

	return bucket.limiter.AllowN(now, 1)
}

// prune forgets users whose last command is older than before and returns
// how many were dropped.
func (l *userLimiter) prune(before time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for userID, bucket := range l.buckets {
		if bucket.lastSeen.Before(before) {
			delete(l.buckets, userID)
			n++
		}
	}

	return n
}

func (l *userLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
