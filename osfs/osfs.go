// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS Filesystem access.
package osfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/o11y/iometrics"
)

// slowThreshold is the duration after which an operation is logged as slow.
var slowThreshold = 1 * time.Minute

// OSFS provides OS Filesystem access.
// It counts metrics by iometrics.
type OSFS struct {
	*iometrics.IOMetrics
}

// New creates new OSFS.
func New(name string) *OSFS {
	return &OSFS{IOMetrics: iometrics.New(name)}
}

func logSlow(ctx context.Context, name string, dur time.Duration, err error) {
	buf := make([]byte, 4*1024)
	n := runtime.Stack(buf, false)
	clog.Warningf(ctx, "slow op %s: %s %v\n%s", name, dur, err, buf[:n])
}

// Open opens the named file for reading.
// Bytes read are counted when the returned file is closed.
func (fs *OSFS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		fs.ReadDone(0, err)
		return nil, err
	}
	return &file{ctx: ctx, file: f, started: time.Now(), fs: fs}, nil
}

// File is a file to write.
type File struct {
	Name string
	Data []byte
}

// WriteFileAtomic writes data to the named file.
// The data is written to a temporary file in the same directory first, and
// renamed to name, so readers never observe a partially written file.
func (fs *OSFS) WriteFileAtomic(ctx context.Context, name string, data []byte) error {
	return fs.WriteFilesAtomic(ctx, []File{{Name: name, Data: data}})
}

// WriteFilesAtomic writes files concurrently to temporary files, then
// renames them in order only if every write succeeded.
// A failed rename leaves the files renamed before it in place.
func (fs *OSFS) WriteFilesAtomic(ctx context.Context, files []File) error {
	started := time.Now()
	tmps := make([]string, len(files))
	var eg errgroup.Group
	for i, f := range files {
		eg.Go(func() error {
			tmp, err := fs.writeTemp(f.Name, f.Data)
			tmps[i] = tmp
			return err
		})
	}
	err := eg.Wait()
	if err == nil {
		err = fs.renameAll(tmps, files)
	}
	if err != nil {
		for _, tmp := range tmps {
			if tmp != "" {
				os.Remove(tmp)
			}
		}
	}
	if dur := time.Since(started); dur > slowThreshold {
		logSlow(ctx, fmt.Sprintf("write %d files", len(files)), dur, err)
	}
	return err
}

func (fs *OSFS) renameAll(tmps []string, files []File) error {
	for i, f := range files {
		err := os.Rename(tmps[i], f.Name)
		fs.OpsDone(err)
		if err != nil {
			return err
		}
		tmps[i] = ""
	}
	return nil
}

// writeTemp writes data to a temporary file next to name, and returns
// the temporary file name.
func (fs *OSFS) writeTemp(name string, data []byte) (string, error) {
	dir := filepath.Dir(name)
	err := os.MkdirAll(dir, 0755)
	fs.OpsDone(err)
	if err != nil {
		return "", err
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(name), uuid.New()))
	err = os.WriteFile(tmp, data, 0644)
	fs.WriteDone(len(data), err)
	if err != nil {
		os.Remove(tmp)
		return "", err
	}
	return tmp, nil
}

type file struct {
	ctx     context.Context
	file    *os.File
	started time.Time
	fs      *OSFS
	n       int
}

func (f *file) Read(buf []byte) (int, error) {
	n, err := f.file.Read(buf)
	f.n += n
	return n, err
}

func (f *file) Close() error {
	name := f.file.Name()
	err := f.file.Close()
	f.fs.ReadDone(f.n, err)
	if dur := time.Since(f.started); dur > slowThreshold {
		logSlow(f.ctx, name, dur, err)
	}
	return err
}
