package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	blocksMinedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mining",
		Name:      "blocks_total",
		Help:      "Count of blocks mined and appended to the chain.",
	})

	miningDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mining",
		Name:      "duration_seconds",
		Help:      "Duration of the proof of work search for a block.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12), // 1ms..~70m
	}, []string{"status"})

	miningNonce = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mining",
		Name:      "nonce",
		Help:      "Nonce that solved each mined block.",
		Buckets:   prometheus.ExponentialBuckets(1, 16, 8), // 1..~268M
	})

	chainHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "chain",
		Name:      "height",
		Help:      "Number of blocks in the chain including genesis.",
	})

	poolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "size",
		Help:      "Number of transactions waiting for the next block.",
	})

	submittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pool",
		Name:      "submitted_total",
		Help:      "Count of transactions accepted into the pool.",
	})

	persistTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "writes_total",
		Help:      "Count of snapshot writes.",
	}, []string{"status"})

	persistDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "write_duration_seconds",
		Help:      "Duration of snapshot writes.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"status"})

	persistConsecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "consecutive_failures",
		Help:      "Number of snapshot writes that have failed in a row.",
	})
)

// Ledger tracks metrics for the mining cycle and the state of the ledger.
type Ledger struct{}

// NewLedger constructs a Ledger recorder.
func NewLedger() Ledger {
	return Ledger{}
}

// ObserveMining records the outcome of a proof of work search.
func (Ledger) ObserveMining(err error, nonce uint64, started time.Time) {
	miningDuration.WithLabelValues(statusOf(err)).Observe(time.Since(started).Seconds())
	if err == nil {
		blocksMinedTotal.Inc()
		miningNonce.Observe(float64(nonce))
	}
}

// ObserveSubmit records a transaction accepted into the pool.
func (Ledger) ObserveSubmit() {
	submittedTotal.Inc()
}

// SetSizes records the current chain height and pool size.
func (Ledger) SetSizes(height int, pool int) {
	chainHeight.Set(float64(height))
	poolSize.Set(float64(pool))
}

// ObservePersist records a snapshot write and the current run of failures.
func (Ledger) ObservePersist(err error, consecutiveFailures int, started time.Time) {
	status := statusOf(err)
	persistTotal.WithLabelValues(status).Inc()
	persistDuration.WithLabelValues(status).Observe(time.Since(started).Seconds())
	persistConsecutiveFailures.Set(float64(consecutiveFailures))
}
