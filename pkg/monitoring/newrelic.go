package monitoring

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

// NewRelicApp wraps the New Relic application. All recording methods are
// safe on a disabled or nil app.
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return &NewRelicApp{nil, false}, nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// Disabled returns an app that records nothing
func Disabled() *NewRelicApp {
	return &NewRelicApp{nil, false}
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled && nr.Application != nil
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.Shutdown(timeout)
}

// RecordDispatchRun records a finished batch dispatch
func (nr *NewRelicApp) RecordDispatchRun(runID string, pending, available, assigned int, took time.Duration, failed bool) {
	nr.RecordCustomMetric("custom/dispatch/run_latency_ms", float64(took.Milliseconds()))
	nr.RecordCustomEvent("DispatchRun", map[string]interface{}{
		"run_id":           runID,
		"pending_orders":   pending,
		"available_riders": available,
		"assigned":         assigned,
		"failed":           failed,
	})
}

// RecordOrderTransition records an order status change
func (nr *NewRelicApp) RecordOrderTransition(orderID, from, to string) {
	nr.RecordCustomEvent("OrderTransition", map[string]interface{}{
		"order_id": orderID,
		"from":     from,
		"to":       to,
	})
}

// RecordDeliveryConfirmed records a completed delivery
func (nr *NewRelicApp) RecordDeliveryConfirmed(orderID string, durationSeconds, cost float64) {
	nr.RecordCustomEvent("DeliveryConfirmed", map[string]interface{}{
		"order_id":         orderID,
		"duration_seconds": durationSeconds,
		"cost":             cost,
	})
}

// RecordDatabasePoolStats records database connection pool statistics
func (nr *NewRelicApp) RecordDatabasePoolStats(stats map[string]interface{}) {
	if totalConns, ok := stats["total_connections"].(int32); ok {
		nr.RecordCustomMetric("custom/db/total_connections", float64(totalConns))
	}
	if idleConns, ok := stats["idle_connections"].(int32); ok {
		nr.RecordCustomMetric("custom/db/idle_connections", float64(idleConns))
	}
	if inUse, ok := stats["in_use_connections"].(int32); ok {
		nr.RecordCustomMetric("custom/db/in_use_connections", float64(inUse))
	}
}

// RecordRedisPoolStats records Redis pool statistics
func (nr *NewRelicApp) RecordRedisPoolStats(stats map[string]interface{}) {
	if hits, ok := stats["hits"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_hits", float64(hits))
	}
	if misses, ok := stats["misses"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/cache_misses", float64(misses))
	}
	if timeouts, ok := stats["timeouts"].(uint32); ok {
		nr.RecordCustomMetric("custom/redis/timeouts", float64(timeouts))
	}
}
