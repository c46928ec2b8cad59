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

// Package todokv is a log-structured key-value store mapping uint64 ids to
// string content. Writes are appended to a change log; reads replay the log
// over the last checkpoint. Now and then a read folds the log into a new
// checkpoint and empties the log.
//
// On disk, for a base path p:
//
//	p         checkpoint, "<id>,<content>" per line
//	p.change  change log, "<id>,0,<content>" (insert) or "<id>,1" (delete)
//	p.seq     last id handed out by NextID
package todokv

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/simple-todo/adapters/repos/db/indexcounter"
)

const (
	changeLogSuffix = ".change"
	counterSuffix   = ".seq"
)

// Store owns the file handles of one database for the duration of a
// session. Calls on a Store are serialized. It must be the only writer: the
// files are not locked, and a second process appending to the same change
// log or compacting concurrently will corrupt the data.
type Store struct {
	sync.Mutex

	path       string
	logger     logrus.FieldLogger
	metrics    *Metrics
	changeLog  *commitLogger
	checkpoint *checkpoint
	counter    *indexcounter.Counter
	closed     bool

	compactionProbability float64
	rand                  *rand.Rand
	degradedReads         bool
	now                   func() time.Time
}

// Open acquires the checkpoint at path, the change log at path+".change" and
// the id counter at path+".seq", creating any of them that are missing.
func Open(path string, logger logrus.FieldLogger, metrics *Metrics,
	opts ...StoreOption,
) (*Store, error) {
	s := &Store{
		path:                  path,
		logger:                logger,
		metrics:               metrics,
		compactionProbability: DefaultCompactionProbability,
		rand:                  rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64())),
		now:                   time.Now,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, errors.Wrap(err, "apply store option")
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ioError("create data directory", dir, err)
		}
	}

	cp, err := newCheckpoint(path, logger, metrics)
	if err != nil {
		return nil, err
	}
	s.checkpoint = cp

	cl, err := newCommitLogger(path+changeLogSuffix, logger, metrics)
	if err != nil {
		return nil, err
	}
	s.changeLog = cl

	counter, err := indexcounter.New(path + counterSuffix)
	if err != nil {
		cl.close()
		return nil, ioError("open id counter", path+counterSuffix, err)
	}
	s.counter = counter

	logger.WithField("action", "todo_store_open").
		WithField("path", path).
		WithField("change_log_bytes", cl.size).
		WithField("last_id", counter.Last()).
		Debug("opened store")

	return s, nil
}

// Apply appends a single operation to the change log. It returns once the
// record is on stable storage.
func (s *Store) Apply(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "apply")
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	start := time.Now()
	if err := s.changeLog.append(rec); err != nil {
		s.logger.WithField("action", "todo_store_apply").
			WithField("path", s.changeLog.path).
			WithError(err).
			Errorf("cannot write record %s to change log", rec)
		return err
	}
	s.metrics.Operation("apply_"+rec.Operation.String(), start)

	s.logger.WithField("action", "todo_store_apply").
		WithField("id", rec.ID).
		WithField("operation", rec.Operation.String()).
		Debugf("applied %s", rec)
	return nil
}

// Aggregate returns the current state: the checkpoint with the change log
// folded over it. With the configured probability the result is also
// written as the new checkpoint and the change log is emptied.
func (s *Store) Aggregate(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "aggregate")
	}

	s.Lock()
	defer s.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	start := time.Now()
	snap, degraded, err := s.fold(s.degradedReads)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate")
	}

	if s.shouldCompact() && !degraded {
		if err := s.compact(snap, compactionProbabilistic); err != nil {
			return nil, errors.Wrap(err, "aggregate")
		}
	}

	s.metrics.SnapshotEntries(len(snap))
	s.metrics.Operation("aggregate", start)
	return snap, nil
}

// View returns the same state as Aggregate but never compacts, so it does
// not write to disk.
func (s *Store) View(ctx context.Context) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "view")
	}

	s.Lock()
	defer s.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	start := time.Now()
	snap, _, err := s.fold(s.degradedReads)
	if err != nil {
		return nil, errors.Wrap(err, "view")
	}

	s.metrics.SnapshotEntries(len(snap))
	s.metrics.Operation("view", start)
	return snap, nil
}

// Compact folds the change log into a new checkpoint unconditionally. It
// never runs on a degraded view.
func (s *Store) Compact(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "compact")
	}

	s.Lock()
	defer s.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	start := time.Now()
	snap, _, err := s.fold(false)
	if err != nil {
		return errors.Wrap(err, "compact")
	}

	if err := s.compact(snap, compactionForced); err != nil {
		return err
	}

	s.metrics.SnapshotEntries(len(snap))
	s.metrics.Operation("compact", start)
	return nil
}

// NextID hands out a new id: the current unix second, or the previous id
// plus one if that is larger. Ids never repeat, also across restarts.
func (s *Store) NextID() (uint64, error) {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	floor := uint64(0)
	if now := s.now().Unix(); now > 0 {
		floor = uint64(now)
	}

	id, err := s.counter.NextAtLeast(floor)
	if err != nil {
		return 0, ioError("allocate id", s.path+counterSuffix, err)
	}
	return id, nil
}

// Close releases all file handles. Calling Close more than once is fine.
func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var result *multierror.Error
	if err := s.changeLog.close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := s.counter.Close(); err != nil {
		result = multierror.Append(result, ioError("close id counter", s.path+counterSuffix, err))
	}

	return result.ErrorOrNil()
}
