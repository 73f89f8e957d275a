package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	mergeCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_store_merges_total",
		Help: "Messages merged into a store",
	})
	revokeCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_store_revokes_total",
		Help: "Messages displaced by a conflicting merge",
	})
	pruneCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hub_store_prunes_total",
		Help: "Messages evicted by the pruner",
	})
)
