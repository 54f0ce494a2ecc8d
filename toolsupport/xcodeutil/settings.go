// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package xcodeutil

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.chromium.org/infra/build/xcsettings/osfs"
)

// Setting is an Xcode build setting.
type Setting struct {
	Key   string
	Value string
}

// Settings accumulates build settings.
// A key may be added more than once; later ones are appended, not replaced.
type Settings struct {
	settings []Setting
}

// Add appends a build setting.
func (s *Settings) Add(key, value string) {
	s.settings = append(s.settings, Setting{Key: key, Value: value})
}

// Len returns the number of accumulated settings.
func (s *Settings) Len() int {
	return len(s.settings)
}

// Sorted returns the settings sorted by key.
// Settings with the same key keep their accumulation order.
func (s *Settings) Sorted() []Setting {
	sorted := make([]Setting, len(s.settings))
	copy(sorted, s.settings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})
	return sorted
}

// Lookup returns the values for key in accumulation order.
func (s *Settings) Lookup(key string) []string {
	var values []string
	for _, setting := range s.settings {
		if setting.Key == key {
			values = append(values, setting.Value)
		}
	}
	return values
}

// Marshal returns the build settings file content.
// Each setting is a "key\tvalue\n" record, sorted by key.
func (s *Settings) Marshal() []byte {
	var buf bytes.Buffer
	for _, setting := range s.Sorted() {
		buf.WriteString(setting.Key)
		buf.WriteByte('\t')
		buf.WriteString(setting.Value)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ReadSettings parses build settings file content read from r.
// fname is used in error messages.
func ReadSettings(fname string, r io.Reader) ([]Setting, error) {
	var settings []Setting
	s := osfs.NewLineScanner(r)
	for s.Scan() {
		key, value, ok := strings.Cut(s.Text(), "\t")
		if !ok {
			return nil, fmt.Errorf("%q: invalid format, missing tab separator", fname)
		}
		settings = append(settings, Setting{
			Key:   key,
			Value: strings.ReplaceAll(value, "\x00", "\n"),
		})
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("%q: %w", fname, err)
	}
	return settings, nil
}
