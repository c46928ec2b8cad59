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
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

type CommitType uint8

const (
	CommitTypeInsert CommitType = iota
	CommitTypeDelete
)

func (ct CommitType) String() string {
	switch ct {
	case CommitTypeInsert:
		return "insert"
	case CommitTypeDelete:
		return "delete"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(ct))
	}
}

// Record is a single operation in the change log. Inserts always carry
// content, deletes never do.
type Record struct {
	ID        uint64
	Content   *string
	Operation CommitType
}

func NewInsert(id uint64, content string) Record {
	return Record{ID: id, Content: &content, Operation: CommitTypeInsert}
}

func NewDelete(id uint64) Record {
	return Record{ID: id, Operation: CommitTypeDelete}
}

func (r Record) Validate() error {
	switch r.Operation {
	case CommitTypeInsert:
		if r.Content == nil {
			return errors.Wrapf(ErrInvalidRecord, "insert of id %d without content", r.ID)
		}
	case CommitTypeDelete:
		if r.Content != nil {
			return errors.Wrapf(ErrInvalidRecord, "delete of id %d with content", r.ID)
		}
	default:
		return errors.Wrapf(ErrInvalidRecord, "operation %s", r.Operation)
	}
	return nil
}

func (r Record) String() string {
	if r.Operation == CommitTypeInsert && r.Content != nil {
		return fmt.Sprintf("%s(%d, %q)", r.Operation, r.ID, *r.Content)
	}
	return fmt.Sprintf("%s(%d)", r.Operation, r.ID)
}

// Snapshot is the logical state of the store: id to content.
type Snapshot map[uint64]string

// IDs returns all keys in ascending order.
func (s Snapshot) IDs() []uint64 {
	ids := make([]uint64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, content := range s {
		out[id] = content
	}
	return out
}
