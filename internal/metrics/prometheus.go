package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the match predictor backend

var (
	// API call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_api_calls_total",
			Help: "Total number of sports data provider API calls",
		},
		[]string{"endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "matchsync_api_call_duration_seconds",
			Help:    "Duration of provider API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	RateLimitPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchsync_rate_limit_pauses_total",
			Help: "Total number of quota cooldown pauses",
		},
	)

	// Weather enrichment metrics
	WeatherFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_weather_fetches_total",
			Help: "Total number of historical weather lookups",
		},
		[]string{"status"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchsync_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "matchsync_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Sync metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_sync_runs_total",
			Help: "Total number of sync runs",
		},
		[]string{"status"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "matchsync_sync_duration_seconds",
			Help:    "Duration of full sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
	)

	MatchesSyncedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "matchsync_matches_synced_total",
			Help: "Total number of match records written during sync",
		},
		[]string{"league", "outcome"},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchsync_last_successful_sync_timestamp",
			Help: "Timestamp of the last completed sync run",
		},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "matchsync_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)
)

// RecordAPICall records a provider API call metric
func RecordAPICall(endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(endpoint, status).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordRateLimitPause records a quota cooldown pause
func RecordRateLimitPause() {
	RateLimitPausesTotal.Inc()
}

// RecordWeatherFetch records a weather lookup outcome
func RecordWeatherFetch(status string) {
	WeatherFetchesTotal.WithLabelValues(status).Inc()
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordSyncRun records the outcome and duration of a sync run
func RecordSyncRun(status string, duration float64) {
	SyncRunsTotal.WithLabelValues(status).Inc()
	SyncDuration.Observe(duration)

	if status == "completed" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordMatchSynced records one match write during sync
func RecordMatchSynced(league, outcome string) {
	MatchesSyncedTotal.WithLabelValues(league, outcome).Inc()
}
