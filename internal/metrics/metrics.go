// Package metrics provides Prometheus metrics for the time tracker API.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// httpRequestsTotal counts handled requests.
	// Labels: method, route (gin full path), status code.
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetracker_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "timetracker_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	entriesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetracker_time_entries_created_total",
			Help: "Total number of time entries created",
		},
		[]string{"category"},
	)

	// hoursLoggedTotal sums durationHours of created entries per category.
	hoursLoggedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetracker_hours_logged_total",
			Help: "Total hours logged through created time entries",
		},
		[]string{"category"},
	)

	categoriesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "timetracker_categories_created_total",
			Help: "Total number of categories created",
		},
	)

	// cacheLookupsTotal counts totals cache lookups.
	// Labels: period (daily, weekly), result (hit, miss).
	cacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetracker_totals_cache_lookups_total",
			Help: "Totals cache lookups by period and result",
		},
		[]string{"period", "result"},
	)

	// eventsPublishedTotal counts entry events. Labels: status (success, failed).
	eventsPublishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timetracker_events_published_total",
			Help: "Time entry events published to the message broker",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(entriesCreatedTotal)
	prometheus.MustRegister(hoursLoggedTotal)
	prometheus.MustRegister(categoriesCreatedTotal)
	prometheus.MustRegister(cacheLookupsTotal)
	prometheus.MustRegister(eventsPublishedTotal)
}

// RecordHTTPRequest records one handled request and its latency.
func RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordEntryCreated records a created time entry and its hours.
func RecordEntryCreated(category string, hours float64) {
	entriesCreatedTotal.WithLabelValues(category).Inc()
	hoursLoggedTotal.WithLabelValues(category).Add(hours)
}

func RecordCategoryCreated() {
	categoriesCreatedTotal.Inc()
}

// RecordCacheLookup records a totals cache hit or miss for "daily" or "weekly".
func RecordCacheLookup(period string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(period, result).Inc()
}

func RecordEventPublished(ok bool) {
	status := "success"
	if !ok {
		status = "failed"
	}
	eventsPublishedTotal.WithLabelValues(status).Inc()
}
