// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package argstream streams compiler args, expanding bazel params files.
package argstream

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/osfs"
	"go.chromium.org/infra/build/xcsettings/toolsupport/shutil"
)

// Separator terminates the args of a section.
// A section that starts with Separator has no args.
const Separator = "---"

// Source provides args one by one.
type Source interface {
	// Next returns the next arg, or io.EOF if no more args.
	Next(ctx context.Context) (string, error)
}

type item struct {
	arg string
	err error
}

// Stream is a Source of args.
// Args that start with "@" are params files, and are replaced with the
// lines of the file.
// Lines wrapped in single quotes (bazel `shell` params format) are unquoted.
type Stream struct {
	ch     chan item
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// New starts streaming args.
// Stream must be closed by Close to stop reading params files.
func New(ctx context.Context, fs *osfs.OSFS, args []string) *Stream {
	if fs == nil {
		fs = osfs.New("argstream")
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream{
		ch:     make(chan item),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer close(s.ch)
		err := produce(ctx, fs, args, s.ch)
		if err != nil && ctx.Err() == nil {
			select {
			case s.ch <- item{err: err}:
			case <-ctx.Done():
			}
		}
	}()
	return s
}

func produce(ctx context.Context, fs *osfs.OSFS, args []string, ch chan<- item) error {
	send := func(arg string) error {
		select {
		case ch <- item{arg: arg}:
			return nil
		case <-ctx.Done():
			return context.Cause(ctx)
		}
	}
	for _, arg := range args {
		fname, ok := strings.CutPrefix(arg, "@")
		if !ok {
			if err := send(arg); err != nil {
				return err
			}
			continue
		}
		if err := expand(ctx, fs, fname, send); err != nil {
			return err
		}
	}
	return nil
}

func expand(ctx context.Context, fs *osfs.OSFS, fname string, send func(string) error) error {
	f, err := fs.Open(ctx, fname)
	if err != nil {
		return fmt.Errorf("failed to open params file %q: %w", fname, err)
	}
	defer f.Close()
	s := osfs.NewLineScanner(f)
	n := 0
	for s.Scan() {
		// Change params files from `shell` to `multiline` format.
		// https://bazel.build/versions/6.1.0/rules/lib/Args#set_param_file_format.format
		if err := send(shutil.Unquote(s.Text())); err != nil {
			return err
		}
		n++
	}
	if err := s.Err(); err != nil {
		return fmt.Errorf("failed to read params file %q: %w", fname, err)
	}
	if clog.V(ctx, 1) {
		clog.Infof(ctx, "expanded params file %s: %d args", fname, n)
	}
	return nil
}

// Next returns the next arg, or io.EOF if no more args.
// Once it returns an error, it keeps returning the same error.
func (s *Stream) Next(ctx context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	select {
	case it, ok := <-s.ch:
		if !ok {
			s.err = io.EOF
			return "", s.err
		}
		if it.err != nil {
			s.err = it.err
			return "", s.err
		}
		return it.arg, nil
	case <-ctx.Done():
		return "", context.Cause(ctx)
	}
}

// Close stops streaming, and waits for the params file being read
// to be closed.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// Slice is a Source of args in a slice, without params file expansion.
type Slice []string

// Next returns the next arg, or io.EOF if no more args.
func (s *Slice) Next(ctx context.Context) (string, error) {
	if len(*s) == 0 {
		return "", io.EOF
	}
	arg := (*s)[0]
	*s = (*s)[1:]
	return arg, nil
}
