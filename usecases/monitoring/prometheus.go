//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2026 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package monitoring

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Config controls whether metrics are collected and where they are written.
// There is no HTTP listener, metrics are exported through a textfile that a
// node-exporter textfile collector can pick up.
type Config struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	TextfilePath string `json:"textfile_path" yaml:"textfile_path"`
}

type PrometheusMetrics struct {
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	StoreOperations        *prometheus.CounterVec
	StoreOperationDuration *prometheus.HistogramVec
	StoreConflicts         *prometheus.CounterVec
	StoreMalformedLines    *prometheus.CounterVec
	StoreCompactions       *prometheus.CounterVec
	StoreSnapshotEntries   *prometheus.GaugeVec
	StoreChangeLogBytes    *prometheus.GaugeVec
	StoreReplayDiskIO      *prometheus.CounterVec
}

// NewPrometheusMetrics registers all collectors on a fresh registry which is
// also used as the gatherer for textfile exports.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	return newPrometheusMetrics(reg, reg)
}

// NewNoopPrometheusMetrics returns working collectors that are not registered
// anywhere. Used when monitoring is disabled.
func NewNoopPrometheusMetrics() *PrometheusMetrics {
	return newPrometheusMetrics(noop, nil)
}

func newPrometheusMetrics(reg prometheus.Registerer, gatherer prometheus.Gatherer) *PrometheusMetrics {
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		Registerer: reg,
		Gatherer:   gatherer,

		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_store_operations_total",
			Help: "Number of store operations by type",
		}, []string{"db", "operation"}),
		StoreOperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "todo_store_operation_duration_seconds",
			Help:    "Duration of store operations",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"db", "operation"}),
		StoreConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_store_fold_conflicts_total",
			Help: "Records skipped during a fold because they conflicted with the current state",
		}, []string{"db", "kind"}),
		StoreMalformedLines: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_store_malformed_lines_total",
			Help: "Change log lines that could not be parsed and were skipped",
		}, []string{"db"}),
		StoreCompactions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_store_compactions_total",
			Help: "Checkpoint rewrites followed by a change log truncation",
		}, []string{"db", "trigger"}),
		StoreSnapshotEntries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "todo_store_snapshot_entries",
			Help: "Number of entries in the most recently aggregated snapshot",
		}, []string{"db"}),
		StoreChangeLogBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "todo_store_change_log_bytes",
			Help: "Size of the change log file",
		}, []string{"db"}),
		StoreReplayDiskIO: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "todo_store_replay_read_bytes_total",
			Help: "Bytes read from disk while replaying the change log and loading the checkpoint",
		}, []string{"db", "file"}),
	}
}

// WriteTextfile writes all gathered metrics to path in the text exposition
// format. The write is atomic.
func (pm *PrometheusMetrics) WriteTextfile(path string) error {
	if pm.Gatherer == nil {
		return errors.New("metrics are not registered on a gatherer")
	}
	return prometheus.WriteToTextfile(path, pm.Gatherer)
}
