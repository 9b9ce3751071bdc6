package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "staffgrid",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests broken down by endpoint and result.",
	}, []string{"endpoint", "result"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "staffgrid",
		Subsystem: "api",
		Name:      "latency_seconds",
		Help:      "Latency distribution for API requests.",
		Buckets: []float64{
			0.001, 0.002, 0.005,
			0.01, 0.02, 0.05,
			0.1, 0.2, 0.5,
			1, 2, 5, 10,
		},
	}, []string{"endpoint", "result"})

	poolOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "staffgrid",
		Subsystem: "pool",
		Name:      "open_connections",
		Help:      "Established connections, in use and idle.",
	}, []string{"database"})

	poolInUse = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "staffgrid",
		Subsystem: "pool",
		Name:      "in_use_connections",
		Help:      "Connections currently in use.",
	}, []string{"database"})

	poolIdle = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "staffgrid",
		Subsystem: "pool",
		Name:      "idle_connections",
		Help:      "Idle connections.",
	}, []string{"database"})
)

// RecordPoolStats publishes a pool snapshot. It matches pool.Options.OnStats.
func RecordPoolStats(name string, s sql.DBStats) {
	poolOpen.WithLabelValues(name).Set(float64(s.OpenConnections))
	poolInUse.WithLabelValues(name).Set(float64(s.InUse))
	poolIdle.WithLabelValues(name).Set(float64(s.Idle))
}

func resultClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	}
	return "2xx"
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// instrument counts and times every request by route template and status class.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := wrap(w)

		next.ServeHTTP(rec, r)

		endpoint := routeName(r)
		result := resultClass(rec.status)
		apiRequests.WithLabelValues(endpoint, result).Inc()
		apiLatency.WithLabelValues(endpoint, result).Observe(time.Since(start).Seconds())
	})
}
