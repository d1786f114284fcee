package ratelimit

import (
	"net/http"
	"time"
)

// Limiter decides whether key may proceed. When it may not, wait is the
// time until the next token.
type Limiter interface {
	Allow(key string) (ok bool, wait time.Duration)
}

// KeyFunc picks the bucket key for a request.
type KeyFunc func(r *http.Request) string

// Clock provides current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Nop never limits.
type Nop struct{}

// Allow always returns true.
func (Nop) Allow(string) (bool, time.Duration) { return true, 0 }
