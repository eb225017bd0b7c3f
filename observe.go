package searchkit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics holds prometheus metrics registered for the client.
type clientMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	bulkItems  *prometheus.CounterVec
}

func newClientMetrics(reg prometheus.Registerer) (*clientMetrics, error) {
	m := &clientMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchkit",
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Total client operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "searchkit",
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		bulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchkit",
			Subsystem: "client",
			Name:      "bulk_items_total",
			Help:      "Bulk items by per-item outcome.",
		}, []string{"status"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.bulkItems); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("searchkit: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("searchkit: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for client operations.
type observer struct {
	logger  *slog.Logger
	metrics *clientMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *clientMetrics
	if reg != nil {
		var err error
		m, err = newClientMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)

	if o.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger != nil {
		if err != nil {
			o.logger.Warn("operation failed",
				"op", op,
				"duration", dur,
				"error", err,
			)
		} else {
			o.logger.Debug("operation completed",
				"op", op,
				"duration", dur,
			)
		}
	}
}

func (o *observer) bulkStarted(ctx context.Context, index string, n int) {
	if o == nil || o.logger == nil {
		return
	}
	o.logger.InfoContext(ctx, "bulk upsert started", "index", index, "documents", n)
}

// bulkFinished counts item outcomes and logs every rejected item.
func (o *observer) bulkFinished(ctx context.Context, index string, items []BulkResponseItem) {
	if o == nil {
		return
	}
	failed := 0
	for i := range items {
		it := &items[i]
		if !it.Failed() {
			continue
		}
		failed++
		if o.logger != nil {
			o.logger.WarnContext(ctx, "bulk item rejected",
				"index", it.Index,
				"id", it.ID,
				"position", i,
				"status", it.Status,
				"type", it.Error.Type,
				"reason", it.Error.Reason,
			)
		}
	}

	if o.metrics != nil {
		o.metrics.bulkItems.WithLabelValues("ok").Add(float64(len(items) - failed))
		o.metrics.bulkItems.WithLabelValues("error").Add(float64(failed))
	}
	if o.logger != nil {
		o.logger.InfoContext(ctx, "bulk upsert finished",
			"index", index,
			"documents", len(items),
			"failed", failed,
		)
	}
}
