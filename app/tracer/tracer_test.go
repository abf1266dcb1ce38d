package tracer

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-todo-api/app/observability/metrics"
)

func TestInitTracingAndMetrics(t *testing.T) {
	handler, shutdown, err := InitTracingAndMetrics("go-todo-api-test")
	require.NoError(t, err)
	defer func() { _ = shutdown(context.Background()) }()

	metrics.RecordTaskOperation(context.Background(), "create")

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "task_operations_total")
}
