// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package debugsettings

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.chromium.org/infra/build/xcsettings/osfs"
)

// Escape replaces newlines in s with NUL, so s fits in a line of
// a debug settings file.
func Escape(s string) string {
	return strings.ReplaceAll(s, "\n", "\x00")
}

// Unescape restores newlines escaped by Escape.
func Unescape(s string) string {
	return strings.ReplaceAll(s, "\x00", "\n")
}

// Marshal returns the debug settings file content of p.
//
// The file has three sections in order: clang args, framework includes and
// swift includes. Each section is a decimal count line followed by that many
// value lines.
func (p *Payload) Marshal() []byte {
	var buf bytes.Buffer
	for _, section := range [][]string{p.ClangArgs, p.FrameworkIncludes, p.SwiftIncludes} {
		buf.WriteString(strconv.Itoa(len(section)))
		buf.WriteByte('\n')
		for _, v := range section {
			buf.WriteString(Escape(v))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// Decode decodes debug settings file content read from r.
// fname is used in error messages.
func Decode(fname string, r io.Reader) (*Payload, error) {
	d := &decoder{fname: fname, s: osfs.NewLineScanner(r)}
	p := &Payload{}
	var err error
	p.ClangArgs, err = d.section("clang args")
	if err != nil {
		return nil, err
	}
	p.FrameworkIncludes, err = d.section("framework includes")
	if err != nil {
		return nil, err
	}
	p.SwiftIncludes, err = d.section("swift includes")
	if err != nil {
		return nil, err
	}
	return p, nil
}

type decoder struct {
	fname string
	s     *bufio.Scanner
}

func (d *decoder) next() (string, bool, error) {
	if d.s.Scan() {
		return d.s.Text(), true, nil
	}
	if err := d.s.Err(); err != nil {
		return "", false, fmt.Errorf("%q: %w", d.fname, err)
	}
	return "", false, nil
}

func (d *decoder) section(name string) ([]string, error) {
	raw, ok, err := d.next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%q: missing %s count", d.fname, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%q: %s count %q was not an integer", d.fname, name, raw)
	}
	values := make([]string, 0, n)
	for i := 0; i < n; i++ {
		v, ok, err := d.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%q: too few %s. found %d, expected %d", d.fname, name, i, n)
		}
		values = append(values, Unescape(v))
	}
	return values, nil
}
