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
	"math"
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
)

const DefaultCompactionProbability = 0.1

type StoreOption func(s *Store) error

// WithCompactionProbability sets the chance that a single Aggregate call
// rewrites the checkpoint and truncates the change log. 0 never compacts
// implicitly, 1 compacts on every call.
func WithCompactionProbability(p float64) StoreOption {
	return func(s *Store) error {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return errors.Errorf("compaction probability must be within [0, 1], got %v", p)
		}

		s.compactionProbability = p
		return nil
	}
}

// WithRandSource replaces the source of the compaction draw.
func WithRandSource(src rand.Source) StoreOption {
	return func(s *Store) error {
		if src == nil {
			return errors.New("rand source must not be nil")
		}

		s.rand = rand.New(src)
		return nil
	}
}

// WithDegradedReads lets Aggregate fall back to an empty base snapshot when
// the checkpoint cannot be loaded, instead of returning the error. Compaction
// is suppressed for such calls.
func WithDegradedReads(enabled bool) StoreOption {
	return func(s *Store) error {
		s.degradedReads = enabled
		return nil
	}
}

// WithClock replaces time.Now as the lower bound for NextID.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) error {
		if now == nil {
			return errors.New("clock must not be nil")
		}

		s.now = now
		return nil
	}
}
