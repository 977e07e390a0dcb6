// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Toggle outcomes.
const (
	ToggleOK       = "ok"
	ToggleConflict = "conflict"
	ToggleNotFound = "not_found"
	ToggleError    = "error"
)

var (
	HomeFeedsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "watchnext_home_feeds_total",
		Help: "Home feeds computed.",
	})

	// BackendFetchDuration observes snapshot reads by backend and entity.
	BackendFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "watchnext_backend_fetch_duration_seconds",
		Help:    "Latency of catalog and profile reads from the backend.",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "entity"})

	StaffPickTogglesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "watchnext_staff_pick_toggles_total",
		Help: "Staff-pick write attempts by outcome.",
	}, []string{"result"})

	CatalogSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "watchnext_catalog_movies",
		Help: "Movies in the most recent snapshot.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
