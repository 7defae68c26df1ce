// Package metrics exposes Prometheus instruments for sync runs and the API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "brightstudy"
	subsystem = "sync"
)

var (
	// runs counts sync runs. Labels: result (ok, discovery_failed, busy, error)
	runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "runs_total",
		Help:      "Total sync runs by result",
	}, []string{"result"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "run_duration_seconds",
		Help:      "Duration of completed sync runs",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	// items counts processed items. Labels: kind, action (new, update, skip, failed)
	items = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "items_total",
		Help:      "Content items processed by kind and action",
	}, []string{"kind", "action"})

	// assets counts asset ensures. Labels: result (present, downloaded, failed)
	assets = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "assets_total",
		Help:      "Asset presence checks and downloads by result",
	}, []string{"result"})

	assetBytes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "asset_bytes_total",
		Help:      "Bytes written for downloaded assets",
	})

	lastSuccess = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last sync run that completed discovery",
	})

	apiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP API requests by method, route and status",
	}, []string{"method", "route", "status"})

	apiLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP API request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func RecordRun(result string, d time.Duration) {
	runs.WithLabelValues(result).Inc()
	if result == "ok" {
		runDuration.Observe(d.Seconds())
		lastSuccess.SetToCurrentTime()
	}
}

func RecordItem(kind, action string) {
	items.WithLabelValues(kind, action).Inc()
}

func RecordAsset(result string, bytes int64) {
	assets.WithLabelValues(result).Inc()
	if bytes > 0 {
		assetBytes.Add(float64(bytes))
	}
}

func RecordRequest(method, route, status string, d time.Duration) {
	apiRequests.WithLabelValues(method, route, status).Inc()
	apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}
