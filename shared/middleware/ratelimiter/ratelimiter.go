package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter keeps one token bucket per identity.
// Buckets unused for longer than expiration are dropped by a background sweep.
type UserRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*entry
	rate       rate.Limit
	burst      int
	expiration time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// New creates a limiter refilling rps tokens per second up to burst.
func New(rps float64, burst int, expiration time.Duration) *UserRateLimiter {
	url := &UserRateLimiter{
		limiters:   make(map[string]*entry),
		rate:       rate.Limit(rps),
		burst:      burst,
		expiration: expiration,
		stop:       make(chan struct{}),
	}
	go url.sweep()
	return url
}

func (url *UserRateLimiter) sweep() {
	interval := url.expiration / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			url.evictIdle(time.Now())
		case <-url.stop:
			return
		}
	}
}

func (url *UserRateLimiter) evictIdle(now time.Time) {
	url.mu.Lock()
	defer url.mu.Unlock()
	for id, e := range url.limiters {
		if now.Sub(e.lastSeen) > url.expiration {
			delete(url.limiters, id)
		}
	}
}

// Allow checks if a request should be allowed for a given identity
func (url *UserRateLimiter) Allow(identity string) bool {
	url.mu.Lock()
	e, ok := url.limiters[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(url.rate, url.burst)}
		url.limiters[identity] = e
	}
	e.lastSeen = time.Now()
	url.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked identities.
func (url *UserRateLimiter) Len() int {
	url.mu.Lock()
	defer url.mu.Unlock()
	return len(url.limiters)
}

// Stop ends the background sweep.
func (url *UserRateLimiter) Stop() {
	url.stopOnce.Do(func() { close(url.stop) })
}

func OnceInSecond() *UserRateLimiter { return New(1, 1, time.Hour) }
func Rps10() *UserRateLimiter        { return New(10, 10, time.Hour) }
func Rps100() *UserRateLimiter       { return New(100, 100, time.Hour) }

// PerMinute allows n requests per minute with a burst of n.
func PerMinute(n int) *UserRateLimiter { return New(float64(n)/60, n, time.Hour) }
