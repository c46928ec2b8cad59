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

package diskio

import (
	"io"
	"time"
)

// MeteredReaderCallback receives the size and duration of a single read.
type MeteredReaderCallback func(read int64, nanoseconds int64)

// MeteredReader counts the bytes read through it and optionally reports
// each read to a callback.
type MeteredReader struct {
	r     io.Reader
	cb    MeteredReaderCallback
	total int64
}

func NewMeteredReader(r io.Reader, cb MeteredReaderCallback) *MeteredReader {
	return &MeteredReader{r: r, cb: cb}
}

// Read reports every non-empty read, including the last one that comes back
// together with io.EOF. A nil callback is ignored.
func (m *MeteredReader) Read(p []byte) (int, error) {
	start := time.Now()
	n, err := m.r.Read(p)
	if n <= 0 {
		return n, err
	}

	m.total += int64(n)
	if m.cb != nil {
		m.cb(int64(n), time.Since(start).Nanoseconds())
	}
	return n, err
}

// BytesRead is the number of bytes read so far.
func (m *MeteredReader) BytesRead() int64 {
	return m.total
}
