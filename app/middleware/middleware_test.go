package appMiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestSecure(t *testing.T) {
	h := Secure(SecureOptions(true))(okHandler)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestIPRateLimiter(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		mw, err := IPRateLimiter("")
		require.NoError(t, err)
		h := mw(okHandler)
		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users/token", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("LimitReached", func(t *testing.T) {
		mw, err := IPRateLimiter("1-M")
		require.NoError(t, err)
		h := mw(okHandler)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users/token", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/users/token", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "detail")
	})

	t.Run("InvalidRate", func(t *testing.T) {
		_, err := IPRateLimiter("ten-per-minute")
		assert.Error(t, err)
	})
}

func TestPrometheus(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Prometheus)
	r.Get("/api/tasks/{taskID}", okHandler)

	before := testutil.CollectAndCount(httpRequestDuration)
	for _, p := range []string{"/api/tasks/1", "/api/tasks/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	// both requests land in one route series
	assert.Equal(t, before+1, testutil.CollectAndCount(httpRequestDuration))
}
