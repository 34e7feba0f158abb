// Package metrics exposes Prometheus collectors for table operations.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector records operation counts and latencies. A nil *Collector
// records nothing.
type Collector struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// New registers the collectors on reg. Collectors already registered on reg
// by an earlier call are reused. A nil reg disables metrics.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, nil
	}

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docstore_operations_total",
			Help: "Total number of table operations",
		},
		[]string{"table", "operation", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "docstore_operation_duration_seconds",
			Help:    "Table operation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"table", "operation"},
	)

	var err error
	if operations, err = register(reg, operations); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}

	return &Collector{operations: operations, duration: duration}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Observe records one finished operation
func (c *Collector) Observe(table, operation string, start time.Time, err error) {
	if c == nil {
		return
	}

	status := "ok"
	if err != nil {
		status = "error"
	}

	c.operations.WithLabelValues(table, operation, status).Inc()
	c.duration.WithLabelValues(table, operation).Observe(time.Since(start).Seconds())
}
