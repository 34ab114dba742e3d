package middleware

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type attempt struct {
	failNum     int
	lockedUntil time.Time
}

// LoginThrottle locks a client out for wait after maxFailures failed logins
// in a row. A nil *LoginThrottle allows everything.
type LoginThrottle struct {
	mu          sync.Mutex
	cache       *gocache.Cache
	maxFailures int
	wait        time.Duration
	now         func() time.Time
}

func NewLoginThrottle(maxFailures int, wait, cleanup time.Duration) *LoginThrottle {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &LoginThrottle{
		cache:       gocache.New(cleanup, cleanup),
		maxFailures: maxFailures,
		wait:        wait,
		now:         time.Now,
	}
}

// Allowed reports whether key may try to log in, and if not for how long it
// has to wait.
func (t *LoginThrottle) Allowed(key string) (time.Duration, bool) {
	if t == nil {
		return 0, true
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	item, found := t.cache.Get(key)
	if !found {
		return 0, true
	}
	a := item.(*attempt)
	if left := a.lockedUntil.Sub(t.now()); left > 0 {
		return left, false
	}
	return 0, true
}

func (t *LoginThrottle) Fail(key string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	a := &attempt{}
	if item, found := t.cache.Get(key); found {
		a = item.(*attempt)
	}
	if !a.lockedUntil.IsZero() && !t.now().Before(a.lockedUntil) {
		a = &attempt{}
	}
	a.failNum++
	if a.failNum >= t.maxFailures {
		a.lockedUntil = t.now().Add(t.wait)
	}
	t.cache.Set(key, a, gocache.DefaultExpiration)
}

func (t *LoginThrottle) Reset(key string) {
	if t == nil {
		return
	}
	t.cache.Delete(key)
}

func WaitMessage(wait time.Duration) string {
	return fmt.Sprintf("Next attempt possible in %d sec.", int64(wait.Round(time.Second).Seconds()))
}
