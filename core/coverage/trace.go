// Copyright 2025 The evmcov Authors
// This file is part of the evmcov library.
//
// The evmcov library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The evmcov library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the evmcov library. If not, see <http://www.gnu.org/licenses/>.

package coverage

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TraceDelimiter prefixes every program counter in a trace.
const TraceDelimiter = "PC: "

// ParseError is returned when a trace entry is not a decimal integer.
type ParseError struct {
	Index int    // position of the entry among the non-empty entries
	Token string // the offending entry, trimmed
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid program counter %q (entry %d): %v", e.Token, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseTrace extracts the program counters from a trace text. The text is
// split on TraceDelimiter and every segment is trimmed. Empty segments, such
// as the text before the first delimiter, are skipped; any other segment
// must be a base-10 integer. Order and duplicates are preserved.
//
// A text without any delimiter is a single segment, so non-blank text that
// is not a number is an error rather than an empty trace.
func ParseTrace(text string) ([]int64, error) {
	var (
		pcs   []int64
		index int
	)
	for _, segment := range strings.Split(text, TraceDelimiter) {
		token := strings.TrimSpace(segment)
		if token == "" {
			continue
		}
		pc, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return nil, &ParseError{Index: index, Token: token, Err: err}
		}
		pcs = append(pcs, pc)
		index++
	}
	traceEntryCounter.Inc(int64(len(pcs)))
	return pcs, nil
}

// ReadTrace reads r to the end and parses it with ParseTrace.
func ReadTrace(r io.Reader) ([]int64, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseTrace(string(text))
}
