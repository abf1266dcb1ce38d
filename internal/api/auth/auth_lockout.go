package auth

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// LoginLockout counts failed logins per email inside a fixed window that
// starts at the first failure. A zero maxAttempts disables it.
type LoginLockout struct {
	attempts    attemptStore
	maxAttempts int
	window      time.Duration
}

// attemptStore is the part of *cache.Cache the lockout uses.
type attemptStore interface {
	Add(k string, x interface{}, d time.Duration) error
	IncrementInt(k string, n int) (int, error)
	Get(k string) (interface{}, bool)
	Delete(k string)
}

var _ attemptStore = (*cache.Cache)(nil)

func NewLoginLockout(maxAttempts int, window time.Duration) *LoginLockout {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &LoginLockout{
		attempts:    cache.New(window, 2*window),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

func (l *LoginLockout) Locked(email string) bool {
	if l == nil || l.maxAttempts <= 0 {
		return false
	}
	v, found := l.attempts.Get(key(email))
	if !found {
		return false
	}
	n, ok := v.(int)
	return ok && n >= l.maxAttempts
}

// RegisterFailure starts the window on the first failure; later failures
// keep the original expiry. An entry that expires between Add and
// IncrementInt starts a new window.
func (l *LoginLockout) RegisterFailure(email string) {
	if l == nil || l.maxAttempts <= 0 {
		return
	}
	k := key(email)
	for i := 0; i < 3; i++ {
		if err := l.attempts.Add(k, 1, l.window); err == nil {
			return
		}
		if _, err := l.attempts.IncrementInt(k, 1); err == nil {
			return
		}
	}
}

func (l *LoginLockout) Reset(email string) {
	if l == nil {
		return
	}
	l.attempts.Delete(key(email))
}

func key(email string) string {
	return "login:" + strings.ToLower(email)
}
