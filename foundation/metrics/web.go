package metrics

import (
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requests atomic.Uint64

var (
	webRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "web",
		Name:      "requests_total",
		Help:      "Count of handled requests.",
	}, []string{"method", "status"})

	webRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "web",
		Name:      "request_duration_seconds",
		Help:      "Duration of handled requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"})

	webErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "web",
		Name:      "errors_total",
		Help:      "Count of requests that ended in an error.",
	})

	webPanicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "web",
		Name:      "panics_total",
		Help:      "Count of requests that panicked.",
	})

	goroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "goroutines",
		Help:      "Number of goroutines, sampled every 100 requests.",
	})
)

// Web tracks metrics for the http handlers.
type Web struct{}

// NewWeb constructs a Web recorder.
func NewWeb() Web {
	return Web{}
}

// ObserveRequest records a handled request. Every 100 requests the number
// of goroutines is sampled.
func (Web) ObserveRequest(method string, err error, started time.Time) {
	webRequestsTotal.WithLabelValues(method, statusOf(err)).Inc()
	webRequestDuration.WithLabelValues(method).Observe(time.Since(started).Seconds())

	if requests.Add(1)%100 == 0 {
		goroutines.Set(float64(runtime.NumGoroutine()))
	}
}

// IncError records a request that returned an error.
func (Web) IncError() {
	webErrorsTotal.Inc()
}

// IncPanic records a request that panicked.
func (Web) IncPanic() {
	webPanicsTotal.Inc()
}
