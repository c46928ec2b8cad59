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

package indexcounter

import (
	"encoding/binary"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Counter is a persisted, strictly increasing uint64. The last value handed
// out is stored as 8 little-endian bytes and rewritten in place on every
// increment.
type Counter struct {
	last uint64
	sync.Mutex
	f *os.File
}

func New(path string) (*Counter, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o666)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	var initial uint64
	if stat.Size() > 0 {
		// the file has existed before, we need to initialize with its content
		if err := binary.Read(f, binary.LittleEndian, &initial); err != nil {
			f.Close()
			return nil, errors.Wrap(err, "read initial count from file")
		}
	}

	return &Counter{
		last: initial,
		f:    f,
	}, nil
}

// Last returns the most recently handed out value, 0 if none.
func (c *Counter) Last() uint64 {
	c.Lock()
	defer c.Unlock()
	return c.last
}

// NextAtLeast returns max(floor, last+1) and persists it before returning.
// The in-memory value only advances once the write has been synced.
func (c *Counter) NextAtLeast(floor uint64) (uint64, error) {
	c.Lock()
	defer c.Unlock()

	next := c.last + 1
	if floor > next {
		next = floor
	}

	if _, err := c.f.Seek(0, io.SeekStart); err != nil {
		return 0, errors.Wrap(err, "seek counter file")
	}
	if err := binary.Write(c.f, binary.LittleEndian, next); err != nil {
		return 0, errors.Wrap(err, "increase counter on disk")
	}
	if err := c.f.Sync(); err != nil {
		return 0, errors.Wrap(err, "fsync counter file")
	}

	c.last = next
	return next, nil
}

func (c *Counter) Close() error {
	c.Lock()
	defer c.Unlock()
	return c.f.Close()
}
