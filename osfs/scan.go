// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package osfs

import (
	"bufio"
	"bytes"
	"io"
)

// maxLineSize is the max size of a line, i.e. an arg or a setting value.
const maxLineSize = 16 * 1024 * 1024

// NewLineScanner returns a scanner of the lines of r.
// Lines end only at '\n'; unlike bufio.ScanLines, a trailing '\r' is kept.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	s.Split(scanLines)
	return s
}

func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
