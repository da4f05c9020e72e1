package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the engine's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	QueriesTotal         metric.Int64Counter
	QueryDurationSeconds metric.Float64Histogram
	CacheHitsTotal       metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("PlacesRecommender")
		var err error
		m := &AppMetrics{}

		m.QueriesTotal, err = meter.Int64Counter(
			"engine_queries_total",
			metric.WithDescription("Total number of engine queries served, by operation"),
			metric.WithUnit("{query}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create engine_queries_total: %v", err)
		}

		m.QueryDurationSeconds, err = meter.Float64Histogram(
			"engine_query_duration_seconds",
			metric.WithDescription("Duration of engine queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create engine_query_duration_seconds: %v", err)
		}

		m.CacheHitsTotal, err = meter.Int64Counter(
			"engine_cache_hits_total",
			metric.WithDescription("Total number of responses served from the query cache"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create engine_cache_hits_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m // Assign to global variable
	})
}

// Get returns the globally initialized AppMetrics instance, initializing it
// on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

// Observe records one completed query for the given operation. Meant to be
// deferred with the operation start time.
func Observe(ctx context.Context, operation string, start time.Time) {
	m := Get()
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	m.QueriesTotal.Add(ctx, 1, attrs)
	m.QueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
}

// CacheHit counts a response served from the query cache.
func CacheHit(ctx context.Context, operation string) {
	Get().CacheHitsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
