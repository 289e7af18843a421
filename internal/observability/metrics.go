package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	reconcileTiles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tilepipe",
			Subsystem: "reconcile",
			Name:      "tiles_total",
			Help:      "Tile records emitted by reconciliation passes.",
		},
		[]string{"stage", "op"},
	)
	reconcileLinks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tilepipe",
			Subsystem: "reconcile",
			Name:      "links_total",
			Help:      "Adjacency links flushed by reconciliation passes.",
		},
		[]string{"stage", "op"},
	)
	passDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tilepipe",
			Subsystem: "reconcile",
			Name:      "pass_duration_seconds",
			Help:      "Reconciliation pass duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage", "result"},
	)
)

// RegisterMetrics registers the collectors with the default registry.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(reconcileTiles, reconcileLinks, passDuration)
	})
}

// PassCounts are the mutation counts of one pass.
type PassCounts struct {
	Inserted      int
	Updated       int
	Deleted       int
	LinksInserted int
	LinksDeleted  int
}

// RecordPass records the outcome of one reconciliation pass.
func RecordPass(stage string, counts PassCounts, duration time.Duration, err error) {
	RegisterMetrics()
	result := "ok"
	if err != nil {
		result = "error"
	}
	passDuration.WithLabelValues(stage, result).Observe(duration.Seconds())
	if err != nil {
		return
	}
	reconcileTiles.WithLabelValues(stage, "insert").Add(float64(counts.Inserted))
	reconcileTiles.WithLabelValues(stage, "update").Add(float64(counts.Updated))
	reconcileTiles.WithLabelValues(stage, "delete").Add(float64(counts.Deleted))
	reconcileLinks.WithLabelValues(stage, "insert").Add(float64(counts.LinksInserted))
	reconcileLinks.WithLabelValues(stage, "delete").Add(float64(counts.LinksDeleted))
}
