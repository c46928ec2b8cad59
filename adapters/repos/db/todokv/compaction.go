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
	"github.com/pkg/errors"
)

// fold replays the change log over the checkpoint. degraded is true when the
// checkpoint could not be loaded and an empty base was used instead.
func (s *Store) fold(allowDegraded bool) (snap Snapshot, degraded bool, err error) {
	snap, err = s.checkpoint.load()
	if err != nil {
		if !allowDegraded {
			return nil, false, err
		}

		s.logger.WithField("action", "todo_store_degraded_read").
			WithField("path", s.path).
			WithError(err).
			Error("cannot load checkpoint, folding change log over an empty snapshot")
		snap, degraded = Snapshot{}, true
	}

	err = s.changeLog.replay(func(rec Record) error {
		s.foldRecord(snap, rec)
		return nil
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "replay change log")
	}

	return snap, degraded, nil
}

// foldRecord applies one record. Inserting an existing id and deleting a
// missing id are conflicts: logged, counted and otherwise ignored, so the
// first insert of an id wins until it is deleted.
func (s *Store) foldRecord(snap Snapshot, rec Record) {
	_, exists := snap[rec.ID]

	switch {
	case exists && rec.Operation == CommitTypeDelete:
		delete(snap, rec.ID)
	case !exists && rec.Operation == CommitTypeInsert:
		snap[rec.ID] = *rec.Content
	case exists:
		s.metrics.Conflict(conflictInsertExisting)
		s.logger.WithField("action", "todo_store_fold_conflict").
			WithField("id", rec.ID).
			Warn("trying to insert an existing id, skipping")
	default:
		s.metrics.Conflict(conflictDeleteMissing)
		s.logger.WithField("action", "todo_store_fold_conflict").
			WithField("id", rec.ID).
			Warn("trying to delete a non-existing id, skipping")
	}
}

func (s *Store) shouldCompact() bool {
	return s.rand.Float64() < s.compactionProbability
}

// compact writes snap as the new checkpoint and only then empties the change
// log. If the truncation fails the log is replayed over a checkpoint that
// already contains its effects on the next call.
func (s *Store) compact(snap Snapshot, trigger string) error {
	if err := s.checkpoint.rewrite(snap); err != nil {
		return errors.Wrap(err, "compact")
	}

	if err := s.changeLog.truncate(); err != nil {
		s.logger.WithField("action", "todo_store_compaction").
			WithField("path", s.changeLog.path).
			WithError(err).
			Error("checkpoint was rewritten but the change log could not be truncated")
		return errors.Wrap(err, "compact")
	}

	s.metrics.Compaction(trigger)
	s.logger.WithField("action", "todo_store_compaction").
		WithField("trigger", trigger).
		WithField("entries", len(snap)).
		Debug("flushed change log into checkpoint")
	return nil
}
