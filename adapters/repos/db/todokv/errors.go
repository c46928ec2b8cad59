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

	"github.com/pkg/errors"
)

var (
	// ErrMalformedRecord is returned when a change log line does not have a
	// parseable shape.
	ErrMalformedRecord = errors.New("malformed change log record")

	// ErrUnknownOperation is returned when a change log line carries an
	// operation code other than insert (0) or delete (1).
	ErrUnknownOperation = errors.New("unknown operation code")

	// ErrMalformedCheckpoint is returned when a checkpoint line is missing its
	// separator or has an invalid id.
	ErrMalformedCheckpoint = errors.New("malformed checkpoint line")

	// ErrInvalidRecord is returned by Apply for an insert without content or a
	// delete with content.
	ErrInvalidRecord = errors.New("invalid record")

	ErrStoreClosed = errors.New("store is closed")
)

// IOError wraps a failed file operation. It is always surfaced to the caller
// and is the only class of error worth retrying.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func ioError(op, path string, err error) error {
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIOFailure reports whether err or any error it wraps is an *IOError.
func IsIOFailure(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}
