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
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/simple-todo/entities/diskio"
)

// checkpoint holds the last compacted snapshot, one "<id>,<content>" line
// per key in ascending id order.
type checkpoint struct {
	path    string
	logger  logrus.FieldLogger
	metrics *Metrics
}

func newCheckpoint(path string, logger logrus.FieldLogger,
	metrics *Metrics,
) (*checkpoint, error) {
	c := &checkpoint{path: path, logger: logger, metrics: metrics}

	// a leftover temp file means a rewrite was interrupted before the rename,
	// the checkpoint itself is still the previous complete version
	tmpPath := path + ".tmp"
	exists, err := diskio.FileExists(tmpPath)
	if err != nil {
		return nil, ioError("stat checkpoint temp file", tmpPath, err)
	}
	if exists {
		logger.WithField("action", "todo_checkpoint_remove_stale_tmp").
			WithField("path", tmpPath).
			Warn("removing leftover from an interrupted checkpoint rewrite")
		if err := diskio.RemoveIfExists(tmpPath); err != nil {
			return nil, ioError("remove checkpoint temp file", tmpPath, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, ioError("open checkpoint", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, ioError("close checkpoint", path, err)
	}

	return c, nil
}

// load parses the checkpoint. A missing or empty file is an empty snapshot.
func (c *checkpoint) load() (Snapshot, error) {
	snap := Snapshot{}

	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, nil
		}
		return nil, ioError("open checkpoint", c.path, err)
	}
	defer f.Close()

	metered := diskio.NewMeteredReader(f, c.metrics.TrackReplayDiskIO("checkpoint"))
	reader := bufio.NewReaderSize(metered, 32*1024)

	lineNo := 0
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			line = strings.TrimRight(line, "\r\n")
			if line != "" {
				id, content, perr := parseCheckpointLine(line)
				if perr != nil {
					return nil, errors.Wrapf(perr, "checkpoint %q line %d", c.path, lineNo)
				}
				snap[id] = content
			}
		}

		if errors.Is(err, io.EOF) {
			return snap, nil
		}
		if err != nil {
			return nil, ioError("read checkpoint", c.path, err)
		}
	}
}

// rewrite replaces the checkpoint with snap. The new content is written to a
// temp file, fsynced and renamed over the old checkpoint, so a crash leaves
// either the old or the new version on disk.
func (c *checkpoint) rewrite(snap Snapshot) error {
	err := diskio.WriteFileAtomic(c.path, 0o644, func(w io.Writer) error {
		for _, id := range snap.IDs() {
			if _, err := w.Write(encodeCheckpointLine(id, snap[id])); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ioError("rewrite checkpoint", c.path, err)
	}

	return nil
}
