// Package metrics provides Prometheus metrics for the configuration
// subsystem: how many fields were applied, how many dynamic records
// were created, and whether application passes succeed. The host
// server exposes the registry; this package only populates it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FieldsApplied counts descriptor values written into target
	// records across all application passes.
	FieldsApplied = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "config",
		Name:      "fields_applied_total",
		Help:      "Total configuration fields applied to target records",
	})

	// DeprecationNotices counts deprecation warnings emitted.
	DeprecationNotices = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "config",
		Name:      "deprecation_notices_total",
		Help:      "Total deprecation notices emitted during application",
	})

	// DynamicRecords counts dynamically-created target records by kind
	// (namespace, set, dc, dc-namespace, tls-context, log-sink).
	DynamicRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "config",
		Name:      "dynamic_records_total",
		Help:      "Total dynamically-created configuration records",
	}, []string{"kind"})

	// PassesCompleted counts successful application passes.
	PassesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "config",
		Name:      "passes_completed_total",
		Help:      "Total configuration application passes completed",
	})

	// PassFailures counts application passes aborted by an error.
	PassFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strata",
		Subsystem: "config",
		Name:      "pass_failures_total",
		Help:      "Total configuration application passes aborted",
	})
)
