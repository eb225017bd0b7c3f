// Package metrics holds the Prometheus collectors of the searchkit gateway.
// Client-level operation metrics live in the searchkit package itself.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "searchkit"

// Gateway Prometheus metrics.
var (
	// EngineUp is 1 while the last health probe reached the engine.
	EngineUp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "engine_up",
		Help:      "Whether the last health probe reached the search engine",
	})

	// DocumentsTotal counts documents submitted to the bulk endpoint, by
	// outcome. The target index is a caller-supplied path segment and stays
	// out of the labels.
	DocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents submitted through the bulk endpoint",
		},
		[]string{"outcome"}, // "indexed" / "rejected" / "failed"
	)
)

var registerOnce sync.Once

// Register adds every gateway collector to reg. Must be called once from main;
// later calls are no-ops.
func Register(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		reg.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestBytes,
			EngineUp,
			DocumentsTotal,
		)
	})
}
