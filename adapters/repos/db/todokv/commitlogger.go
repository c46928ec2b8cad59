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
	"bytes"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/weaviate/simple-todo/entities/diskio"
)

// logFile is the part of *os.File the change log uses.
type logFile interface {
	io.Writer
	io.ReaderAt
	Stat() (os.FileInfo, error)
	Sync() error
	Truncate(size int64) error
	Close() error
}

// commitLogger is the append-only change log. Every append is fsynced before
// it is acknowledged. The file is emptied by truncate once the checkpoint has
// absorbed its content. Apart from that it is only shortened to remove a line
// that was never acknowledged.
type commitLogger struct {
	file    logFile
	path    string
	size    int64
	logger  logrus.FieldLogger
	metrics *Metrics
}

func newCommitLogger(path string, logger logrus.FieldLogger,
	metrics *Metrics,
) (*commitLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, ioError("open change log", path, err)
	}

	cl := &commitLogger{
		file:    f,
		path:    path,
		logger:  logger,
		metrics: metrics,
	}

	if err := cl.dropTornTail(); err != nil {
		f.Close()
		return nil, err
	}

	metrics.ChangeLogBytes(cl.size)
	return cl, nil
}

// dropTornTail cuts off an unterminated last line left behind by a crash.
// append only acknowledges a record once its newline is synced, so such a
// line was never acknowledged, even if the part that made it to disk would
// still parse as a valid record.
func (cl *commitLogger) dropTornTail() error {
	info, err := cl.file.Stat()
	if err != nil {
		return ioError("stat change log", cl.path, err)
	}
	cl.size = info.Size()
	if cl.size == 0 {
		return nil
	}

	end, err := cl.lastLineEnd()
	if err != nil {
		return err
	}
	if end == cl.size {
		return nil
	}

	cl.logger.WithField("action", "todo_change_log_torn_tail").
		WithField("path", cl.path).
		WithField("dropped_bytes", cl.size-end).
		Warn("change log does not end with a newline, dropping the unfinished last line")

	return cl.truncateTo(end)
}

// lastLineEnd returns the offset right after the last newline, 0 if the file
// has none.
func (cl *commitLogger) lastLineEnd() (int64, error) {
	buf := make([]byte, 4096)
	for off := cl.size; off > 0; {
		n := int64(len(buf))
		if off < n {
			n = off
		}
		off -= n

		chunk := buf[:n]
		if _, err := cl.file.ReadAt(chunk, off); err != nil {
			return 0, ioError("read change log tail", cl.path, err)
		}
		if i := bytes.LastIndexByte(chunk, '\n'); i >= 0 {
			return off + int64(i) + 1, nil
		}
	}
	return 0, nil
}

func (cl *commitLogger) append(rec Record) error {
	return cl.write(encodeRecord(rec))
}

// write appends line and syncs it. The bytes of a failed write are removed
// again, so a partial line never ends up in front of the next append.
func (cl *commitLogger) write(line []byte) error {
	n, err := cl.file.Write(line)
	if err != nil {
		if n > 0 {
			if rerr := cl.rollback(int64(n)); rerr != nil {
				cl.logger.WithField("action", "todo_change_log_rollback").
					WithField("path", cl.path).
					WithError(rerr).
					Error("cannot remove partially written line from change log")
			}
		}
		return ioError("append to change log", cl.path, err)
	}
	cl.size += int64(n)

	if err := cl.file.Sync(); err != nil {
		return ioError("fsync change log", cl.path, err)
	}

	cl.metrics.ChangeLogBytes(cl.size)
	return nil
}

// replay parses the whole log from the beginning and hands every valid
// record to fn in log order. It reads through a section reader, so it can be
// run any number of times without touching the append offset.
func (cl *commitLogger) replay(fn func(rec Record) error) error {
	info, err := cl.file.Stat()
	if err != nil {
		return ioError("stat change log", cl.path, err)
	}
	cl.size = info.Size()

	section := io.NewSectionReader(cl.file, 0, cl.size)
	metered := diskio.NewMeteredReader(section, cl.metrics.TrackReplayDiskIO("change_log"))

	if err := newCommitLoggerParser(metered, cl.path, cl.logger, cl.metrics).Do(fn); err != nil {
		return err
	}

	cl.logger.WithField("action", "todo_change_log_replay").
		WithField("path", cl.path).
		WithField("bytes", metered.BytesRead()).
		Trace("replayed change log")
	return nil
}

func (cl *commitLogger) rollback(written int64) error {
	info, err := cl.file.Stat()
	if err != nil {
		return ioError("stat change log", cl.path, err)
	}

	return cl.truncateTo(info.Size() - written)
}

func (cl *commitLogger) truncate() error {
	return cl.truncateTo(0)
}

func (cl *commitLogger) truncateTo(size int64) error {
	if err := cl.file.Truncate(size); err != nil {
		return ioError("truncate change log", cl.path, err)
	}
	cl.size = size

	if err := cl.file.Sync(); err != nil {
		return ioError("fsync change log", cl.path, err)
	}

	cl.metrics.ChangeLogBytes(size)
	return nil
}

func (cl *commitLogger) close() error {
	if err := cl.file.Close(); err != nil {
		return ioError("close change log", cl.path, err)
	}
	return nil
}
