package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

// expiringStore drops the entry right before the first increment, as if
// the window ran out between Add and IncrementInt.
type expiringStore struct {
	*cache.Cache
	expired bool
}

func (s *expiringStore) IncrementInt(k string, n int) (int, error) {
	if !s.expired {
		s.expired = true
		s.Cache.Delete(k)
	}
	return s.Cache.IncrementInt(k, n)
}

func TestLoginLockout(t *testing.T) {
	t.Run("locks after max attempts", func(t *testing.T) {
		l := NewLoginLockout(3, time.Minute)
		for i := 0; i < 2; i++ {
			l.RegisterFailure("user_1@example.com")
		}
		assert.False(t, l.Locked("user_1@example.com"))
		l.RegisterFailure("user_1@example.com")
		assert.True(t, l.Locked("user_1@example.com"))
		assert.False(t, l.Locked("user_2@example.com"))
	})

	t.Run("reset clears failures", func(t *testing.T) {
		l := NewLoginLockout(1, time.Minute)
		l.RegisterFailure("user_1@example.com")
		assert.True(t, l.Locked("user_1@example.com"))
		l.Reset("user_1@example.com")
		assert.False(t, l.Locked("user_1@example.com"))
	})

	t.Run("window expires", func(t *testing.T) {
		l := NewLoginLockout(1, 20*time.Millisecond)
		l.RegisterFailure("user_1@example.com")
		assert.True(t, l.Locked("user_1@example.com"))
		assert.Eventually(t, func() bool { return !l.Locked("user_1@example.com") }, time.Second, 10*time.Millisecond)
	})

	t.Run("failure is kept when the entry expires mid update", func(t *testing.T) {
		l := NewLoginLockout(1, time.Minute)
		store := &expiringStore{Cache: cache.New(time.Minute, 2*time.Minute)}
		l.attempts = store

		l.RegisterFailure("user_1@example.com")
		assert.True(t, l.Locked("user_1@example.com"))

		l.RegisterFailure("user_1@example.com")
		assert.True(t, store.expired)
		assert.True(t, l.Locked("user_1@example.com"))
		v, found := store.Get("login:user_1@example.com")
		assert.True(t, found)
		assert.Equal(t, 1, v)
	})

	t.Run("counts concurrent failures", func(t *testing.T) {
		l := NewLoginLockout(50, time.Minute)
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				l.RegisterFailure("user_1@example.com")
			}()
		}
		wg.Wait()
		assert.True(t, l.Locked("user_1@example.com"))
	})

	t.Run("disabled", func(t *testing.T) {
		l := NewLoginLockout(0, time.Minute)
		l.RegisterFailure("user_1@example.com")
		assert.False(t, l.Locked("user_1@example.com"))

		var nilLockout *LoginLockout
		nilLockout.RegisterFailure("user_1@example.com")
		assert.False(t, nilLockout.Locked("user_1@example.com"))
	})
}
