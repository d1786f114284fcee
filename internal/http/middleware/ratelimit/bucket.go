package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Config stores Buckets settings.
type Config struct {
	Rate       float64       // tokens per second
	Burst      int           // bucket capacity
	TTL        time.Duration // idle buckets are dropped after TTL, 0 keeps them
	MaxBuckets int           // 0 means unbounded; new keys are refused when full
}

// Buckets is a per-key token bucket limiter.
type Buckets struct {
	cfg   Config
	clock Clock

	mu        sync.Mutex
	byKey     map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	tokens float64
	filled time.Time
}

// NewBuckets creates a limiter. clock may be nil.
func NewBuckets(clock Clock, cfg Config) *Buckets {
	if clock == nil {
		clock = realClock{}
	}
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Buckets{cfg: cfg, clock: clock, byKey: make(map[string]*bucket)}
}

// Allow takes one token from key's bucket.
func (l *Buckets) Allow(key string) (bool, time.Duration) {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)

	b, ok := l.byKey[key]
	if !ok {
		if l.cfg.MaxBuckets > 0 && len(l.byKey) >= l.cfg.MaxBuckets {
			return false, time.Second
		}
		b = &bucket{tokens: float64(l.cfg.Burst), filled: now}
		l.byKey[key] = b
	}

	if dt := now.Sub(b.filled); dt > 0 {
		b.tokens = math.Min(float64(l.cfg.Burst), b.tokens+dt.Seconds()*l.cfg.Rate)
		b.filled = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	missing := 1 - b.tokens
	return false, time.Duration(missing / l.cfg.Rate * float64(time.Second))
}

// Len returns the number of tracked keys.
func (l *Buckets) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.byKey)
}

// sweepLocked drops buckets idle for longer than TTL, at most every TTL/2
// (and at least a minute apart).
func (l *Buckets) sweepLocked(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}
	every := max(l.cfg.TTL/2, time.Minute)
	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < every {
		return
	}
	l.lastSweep = now
	for k, b := range l.byKey {
		if now.Sub(b.filled) > l.cfg.TTL {
			delete(l.byKey, k)
		}
	}
}
