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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Content is stored with backslashes and line breaks escaped so a value can
// never span lines. Commas are left alone: checkpoint lines split on the
// first comma and change log lines on the first two, everything after is
// content.
var contentEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

func escapeContent(s string) string {
	return contentEscaper.Replace(s)
}

func unescapeContent(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}

		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		default:
			// not an escape we produce, keep it verbatim
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// encodeRecord renders a record as "<id>,1\n" for deletes and
// "<id>,0,<content>\n" for inserts.
func encodeRecord(r Record) []byte {
	buf := strconv.AppendUint(nil, r.ID, 10)
	buf = append(buf, ',')
	buf = strconv.AppendUint(buf, uint64(r.Operation), 10)
	if r.Operation == CommitTypeInsert && r.Content != nil {
		buf = append(buf, ',')
		buf = append(buf, escapeContent(*r.Content)...)
	}
	return append(buf, '\n')
}

func parseOperation(field string) (CommitType, error) {
	code, err := strconv.ParseUint(field, 10, 8)
	if err != nil {
		return 0, errors.Wrapf(ErrUnknownOperation, "%q", field)
	}

	switch ct := CommitType(code); ct {
	case CommitTypeInsert, CommitTypeDelete:
		return ct, nil
	default:
		return 0, errors.Wrapf(ErrUnknownOperation, "%d", code)
	}
}

// parseRecordLine parses a single change log line without its trailing
// newline.
func parseRecordLine(line string) (Record, error) {
	fields := strings.SplitN(line, ",", 3)
	if len(fields) == 1 {
		return Record{}, errors.Wrapf(ErrMalformedRecord, "no separator in %q", line)
	}

	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return Record{}, errors.Wrapf(ErrMalformedRecord, "invalid id %q", fields[0])
	}

	op, err := parseOperation(fields[1])
	if err != nil {
		return Record{}, err
	}

	// without content every valid opcode is a delete
	if len(fields) == 2 || op == CommitTypeDelete {
		return NewDelete(id), nil
	}
	return NewInsert(id, unescapeContent(fields[2])), nil
}

func encodeCheckpointLine(id uint64, content string) []byte {
	buf := strconv.AppendUint(nil, id, 10)
	buf = append(buf, ',')
	buf = append(buf, escapeContent(content)...)
	return append(buf, '\n')
}

func parseCheckpointLine(line string) (uint64, string, error) {
	idField, content, ok := strings.Cut(line, ",")
	if !ok {
		return 0, "", errors.Wrapf(ErrMalformedCheckpoint, "no separator in %q", line)
	}

	id, err := strconv.ParseUint(idField, 10, 64)
	if err != nil {
		return 0, "", errors.Wrapf(ErrMalformedCheckpoint, "invalid id %q", idField)
	}

	return id, unescapeContent(content), nil
}
