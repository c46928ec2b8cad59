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

package todokv

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaviate/simple-todo/entities/diskio"
	"github.com/weaviate/simple-todo/usecases/monitoring"
)

const (
	conflictInsertExisting = "insert_existing"
	conflictDeleteMissing  = "delete_missing"

	compactionProbabilistic = "probabilistic"
	compactionForced        = "forced"
)

// Metrics is safe to use as a nil pointer, every method is a no-op then.
type Metrics struct {
	operations      *prometheus.CounterVec
	durations       prometheus.ObserverVec
	conflicts       *prometheus.CounterVec
	malformedLines  prometheus.Counter
	compactions     *prometheus.CounterVec
	snapshotEntries prometheus.Gauge
	changeLogBytes  prometheus.Gauge
	replayDiskIO    *prometheus.CounterVec
}

func NewMetrics(promMetrics *monitoring.PrometheusMetrics, dbName string) *Metrics {
	if promMetrics == nil {
		return nil
	}

	labels := prometheus.Labels{"db": dbName}

	return &Metrics{
		operations:      promMetrics.StoreOperations.MustCurryWith(labels),
		durations:       promMetrics.StoreOperationDuration.MustCurryWith(labels),
		conflicts:       promMetrics.StoreConflicts.MustCurryWith(labels),
		malformedLines:  promMetrics.StoreMalformedLines.With(labels),
		compactions:     promMetrics.StoreCompactions.MustCurryWith(labels),
		snapshotEntries: promMetrics.StoreSnapshotEntries.With(labels),
		changeLogBytes:  promMetrics.StoreChangeLogBytes.With(labels),
		replayDiskIO:    promMetrics.StoreReplayDiskIO.MustCurryWith(labels),
	}
}

func (m *Metrics) Operation(op string, start time.Time) {
	if m == nil {
		return
	}

	m.operations.With(prometheus.Labels{"operation": op}).Inc()
	m.durations.With(prometheus.Labels{"operation": op}).
		Observe(time.Since(start).Seconds())
}

func (m *Metrics) Conflict(kind string) {
	if m == nil {
		return
	}

	m.conflicts.With(prometheus.Labels{"kind": kind}).Inc()
}

func (m *Metrics) MalformedLine() {
	if m == nil {
		return
	}

	m.malformedLines.Inc()
}

func (m *Metrics) Compaction(trigger string) {
	if m == nil {
		return
	}

	m.compactions.With(prometheus.Labels{"trigger": trigger}).Inc()
}

func (m *Metrics) SnapshotEntries(count int) {
	if m == nil {
		return
	}

	m.snapshotEntries.Set(float64(count))
}

func (m *Metrics) ChangeLogBytes(size int64) {
	if m == nil {
		return
	}

	m.changeLogBytes.Set(float64(size))
}

func (m *Metrics) TrackReplayDiskIO(file string) diskio.MeteredReaderCallback {
	if m == nil {
		return nil
	}

	counter := m.replayDiskIO.With(prometheus.Labels{"file": file})
	return func(read int64, _ int64) {
		counter.Add(float64(read))
	}
}
