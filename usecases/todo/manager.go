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

package todo

import (
	"context"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/simple-todo/adapters/repos/db/todokv"
)

var ErrEmptyContent = errors.New("todo content must not be empty")

// Store is the subset of *todokv.Store the manager depends on.
type Store interface {
	Apply(ctx context.Context, rec todokv.Record) error
	Aggregate(ctx context.Context) (todokv.Snapshot, error)
	View(ctx context.Context) (todokv.Snapshot, error)
	Compact(ctx context.Context) error
	NextID() (uint64, error)
}

type Item struct {
	ID      uint64
	Content string
}

// Manager implements the todo list operations on top of a store. Reads that
// fail with an I/O error are retried according to the backoff policy, every
// other error is returned right away.
type Manager struct {
	store      Store
	logger     logrus.FieldLogger
	newBackoff func() backoff.BackOff
}

func NewManager(store Store, logger logrus.FieldLogger,
	newBackoff func() backoff.BackOff,
) *Manager {
	if newBackoff == nil {
		newBackoff = func() backoff.BackOff { return &backoff.StopBackOff{} }
	}

	return &Manager{
		store:      store,
		logger:     logger,
		newBackoff: newBackoff,
	}
}

// Add stores a new item and returns its id.
func (m *Manager) Add(ctx context.Context, content string) (uint64, error) {
	if content == "" {
		return 0, ErrEmptyContent
	}

	id, err := m.store.NextID()
	if err != nil {
		return 0, errors.Wrap(err, "allocate id")
	}

	if err := m.store.Apply(ctx, todokv.NewInsert(id, content)); err != nil {
		return 0, errors.Wrapf(err, "add item %d", id)
	}

	m.logger.WithField("action", "todo_add").
		WithField("id", id).
		Info("added todo item")
	return id, nil
}

// Remove records the deletion of id. Removing an unknown id is not an error,
// it is ignored when the list is folded.
func (m *Manager) Remove(ctx context.Context, id uint64) error {
	if err := m.store.Apply(ctx, todokv.NewDelete(id)); err != nil {
		return errors.Wrapf(err, "remove item %d", id)
	}

	m.logger.WithField("action", "todo_remove").
		WithField("id", id).
		Info("removed todo item")
	return nil
}

// List returns all items ordered by id.
func (m *Manager) List(ctx context.Context) ([]Item, error) {
	var snap todokv.Snapshot
	err := m.retry(ctx, "todo_list", func() error {
		var err error
		snap, err = m.store.Aggregate(ctx)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}

	items := make([]Item, 0, len(snap))
	for _, id := range snap.IDs() {
		items = append(items, Item{ID: id, Content: snap[id]})
	}
	return items, nil
}

// Count returns the number of items. Unlike List it never triggers a
// compaction.
func (m *Manager) Count(ctx context.Context) (int, error) {
	var snap todokv.Snapshot
	err := m.retry(ctx, "todo_count", func() error {
		var err error
		snap, err = m.store.View(ctx)
		return err
	})
	if err != nil {
		return 0, errors.Wrap(err, "count items")
	}
	return len(snap), nil
}

// Compact forces the change log into a new checkpoint.
func (m *Manager) Compact(ctx context.Context) error {
	err := m.retry(ctx, "todo_compact", func() error {
		return m.store.Compact(ctx)
	})
	if err != nil {
		return errors.Wrap(err, "compact")
	}
	return nil
}

func (m *Manager) retry(ctx context.Context, action string, op func() error) error {
	attempt := 0
	return backoff.Retry(func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		attempt++
		err := op()
		if err == nil {
			return nil
		}
		if !todokv.IsIOFailure(err) {
			return backoff.Permanent(err)
		}

		m.logger.WithField("action", action).
			WithField("attempt", attempt).
			WithError(err).
			Warn("store operation failed with an i/o error")
		return err
	}, backoff.WithContext(m.newBackoff(), ctx))
}
