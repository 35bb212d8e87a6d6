package hion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// actionsPerformed counts committed actions by process type.
	actionsPerformed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hionsim",
		Subsystem: "action",
		Name:      "performed_total",
		Help:      "Total actions committed against the particle collection",
	}, []string{"process"})

	// conservationViolations counts detected ledger mismatches by process
	// type, including the tolerated string-process ones.
	conservationViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hionsim",
		Subsystem: "action",
		Name:      "conservation_violations_total",
		Help:      "Total quantum-number conservation violations detected",
	}, []string{"process"})

	// channelsRegistered counts candidate channels offered to the weighted
	// registry across all actions.
	channelsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hionsim",
		Subsystem: "channels",
		Name:      "registered_total",
		Help:      "Total candidate reaction channels registered",
	})

	// channelWeights tracks the distribution of registered channel weights.
	channelWeights = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hionsim",
		Subsystem: "channels",
		Name:      "weight",
		Help:      "Distribution of registered channel weights",
		Buckets:   prometheus.ExponentialBuckets(1e-12, 10, 12),
	})
)
