package metrics

import (
	"context"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	LoginAttemptsTotal  metric.Int64Counter
	TaskOperationsTotal metric.Int64Counter
	UserLifecycleTotal  metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Call it after the provider is installed; before that the global no-op
// provider is used.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("go-todo-api")
		var err error
		m := &AppMetrics{}

		m.LoginAttemptsTotal, err = meter.Int64Counter(
			"login_attempts_total",
			metric.WithDescription("Token requests by outcome"),
			metric.WithUnit("{attempt}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create login_attempts_total: %v", err)
		}

		m.TaskOperationsTotal, err = meter.Int64Counter(
			"task_operations_total",
			metric.WithDescription("Completed task operations by kind"),
			metric.WithUnit("{operation}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create task_operations_total: %v", err)
		}

		m.UserLifecycleTotal, err = meter.Int64Counter(
			"user_lifecycle_events_total",
			metric.WithDescription("User registrations, soft deletes and restores"),
			metric.WithUnit("{event}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create user_lifecycle_events_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the instruments, initialising them on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// RecordLogin counts a token request outcome: success, invalid_credentials
// or locked.
func RecordLogin(ctx context.Context, outcome string) {
	Get().LoginAttemptsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordTaskOperation counts a successful task operation.
func RecordTaskOperation(ctx context.Context, operation string) {
	Get().TaskOperationsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

// RecordUserLifecycle counts register, soft_delete and restore events.
func RecordUserLifecycle(ctx context.Context, event string) {
	Get().UserLifecycleTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("event", event)))
}
