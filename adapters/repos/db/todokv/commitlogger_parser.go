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
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// commitloggerParser turns change log lines into records. A line that cannot
// be parsed is logged, counted and skipped; parsing continues with the next
// line. Only read errors abort the replay.
type commitloggerParser struct {
	reader  *bufio.Reader
	path    string
	logger  logrus.FieldLogger
	metrics *Metrics
}

func newCommitLoggerParser(r io.Reader, path string, logger logrus.FieldLogger,
	metrics *Metrics,
) *commitloggerParser {
	return &commitloggerParser{
		reader:  bufio.NewReaderSize(r, 32*1024),
		path:    path,
		logger:  logger,
		metrics: metrics,
	}
}

func (p *commitloggerParser) Do(fn func(rec Record) error) error {
	lineNo := 0
	for {
		line, err := p.reader.ReadString('\n')
		if len(line) > 0 {
			lineNo++
			if err := p.parseLine(lineNo, line, fn); err != nil {
				return err
			}
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return ioError("read change log", p.path, err)
		}
	}
}

func (p *commitloggerParser) parseLine(lineNo int, line string,
	fn func(rec Record) error,
) error {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}

	rec, err := parseRecordLine(line)
	if err != nil {
		p.metrics.MalformedLine()
		p.logger.WithField("action", "todo_change_log_skip_malformed").
			WithField("path", p.path).
			WithField("line", lineNo).
			WithError(err).
			Warn("skipping malformed change log line")
		return nil
	}

	return fn(rec)
}
