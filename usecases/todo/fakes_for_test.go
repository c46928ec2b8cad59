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

	"github.com/weaviate/simple-todo/adapters/repos/db/todokv"
)

type fakeStore struct {
	records      []todokv.Record
	nextID       uint64
	aggregateErr []error
	aggregates   int
	views        int
	compactions  int
	applyErr     error
}

func (f *fakeStore) Apply(ctx context.Context, rec todokv.Record) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeStore) Aggregate(ctx context.Context) (todokv.Snapshot, error) {
	f.aggregates++
	if len(f.aggregateErr) > 0 {
		err := f.aggregateErr[0]
		f.aggregateErr = f.aggregateErr[1:]
		if err != nil {
			return nil, err
		}
	}

	snap := todokv.Snapshot{}
	for _, rec := range f.records {
		switch rec.Operation {
		case todokv.CommitTypeInsert:
			if _, ok := snap[rec.ID]; !ok {
				snap[rec.ID] = *rec.Content
			}
		case todokv.CommitTypeDelete:
			delete(snap, rec.ID)
		}
	}
	return snap, nil
}

func (f *fakeStore) View(ctx context.Context) (todokv.Snapshot, error) {
	f.views++
	return f.Aggregate(ctx)
}

func (f *fakeStore) Compact(ctx context.Context) error {
	f.compactions++
	return nil
}

func (f *fakeStore) NextID() (uint64, error) {
	f.nextID++
	return f.nextID, nil
}
