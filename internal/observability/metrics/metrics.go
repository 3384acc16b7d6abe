package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "evdash_"

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	tripsIngested   prometheus.Counter
	tripsDeduped    prometheus.Counter
	uploadsTotal    *prometheus.CounterVec
	restoresTotal   *prometheus.CounterVec
	snapshotExports prometheus.Counter
)

// Init registers the service metrics with the given registerer.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, path and status",
			},
			[]string{"method", "path", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		)
		tripsIngested = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "trips_ingested_total",
			Help: "Trips persisted from uploaded source files",
		})
		tripsDeduped = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "trips_deduplicated_total",
			Help: "Trips skipped as duplicates during ingestion",
		})
		uploadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "uploads_total",
				Help: "Source file uploads by outcome",
			},
			[]string{"status"},
		)
		restoresTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "restores_total",
				Help: "Backup restore attempts by outcome",
			},
			[]string{"status"},
		)
		snapshotExports = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "snapshot_exports_total",
			Help: "Backup snapshots exported",
		})

		reg.MustRegister(
			httpRequests, httpLatency,
			tripsIngested, tripsDeduped,
			uploadsTotal, restoresTotal, snapshotExports,
		)
	})
}

// ObserveIngest records one upload outcome and its trip counts.
func ObserveIngest(status string, added, skipped int) {
	if uploadsTotal == nil {
		return
	}
	uploadsTotal.WithLabelValues(status).Inc()
	tripsIngested.Add(float64(added))
	tripsDeduped.Add(float64(skipped))
}

// ObserveRestore records one restore attempt.
func ObserveRestore(status string) {
	if restoresTotal == nil {
		return
	}
	restoresTotal.WithLabelValues(status).Inc()
}

// ObserveExport records one snapshot export.
func ObserveExport() {
	if snapshotExports == nil {
		return
	}
	snapshotExports.Inc()
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if httpRequests == nil {
			return
		}

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
