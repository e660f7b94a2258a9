// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LifecycleOps counts license mutations by operation (create, update,
	// delete, renew, status_change) and result (ok, error).
	LifecycleOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "license_admin",
		Name:      "lifecycle_operations_total",
		Help:      "License lifecycle operations by operation and result.",
	}, []string{"operation", "result"})

	// AccessChecks counts client license validations by outcome.
	AccessChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "license_admin",
		Name:      "access_checks_total",
		Help:      "Client license access checks by result.",
	}, []string{"result"})

	// DBProbes counts client database connectivity probes by outcome.
	DBProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "license_admin",
		Name:      "clientdb_probes_total",
		Help:      "Client database connectivity probes by result.",
	}, []string{"result"})
)

// ObserveOp records one lifecycle operation outcome.
func ObserveOp(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	LifecycleOps.WithLabelValues(operation, result).Inc()
}
