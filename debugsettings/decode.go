// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package debugsettings

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/osfs"
	"go.chromium.org/infra/build/xcsettings/sync/semaphore"
)

// Semaphore bounds concurrent reads of debug settings files.
var Semaphore = semaphore.New("debugsettings-decode", runtime.NumCPU()*2)

// Decoder decodes debug settings files.
type Decoder struct {
	// FS is used to read files. Default to a new osfs.OSFS.
	FS *osfs.OSFS
	// Semaphore bounds concurrent reads. Default to Semaphore.
	Semaphore *semaphore.Semaphore
}

func (d Decoder) fs() *osfs.OSFS {
	if d.FS == nil {
		return osfs.New("debugsettings")
	}
	return d.FS
}

func (d Decoder) sema() *semaphore.Semaphore {
	if d.Semaphore == nil {
		return Semaphore
	}
	return d.Semaphore
}

func (d Decoder) decodeFile(ctx context.Context, fs *osfs.OSFS, fname string) (*Payload, error) {
	f, err := fs.Open(ctx, fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(fname, f)
}

// DecodeFiles decodes debug settings files concurrently.
// The returned payloads are in the same order as fnames, regardless of
// the order in which reads complete.
// If any decode fails, it returns the first error and no payloads.
func (d Decoder) DecodeFiles(ctx context.Context, fnames []string) ([]*Payload, error) {
	started := time.Now()
	fs := d.fs()
	sema := d.sema()
	payloads := make([]*Payload, len(fnames))
	eg, ctx := errgroup.WithContext(ctx)
	for i, fname := range fnames {
		eg.Go(func() error {
			ctx := clog.WithLabels(ctx, map[string]string{"file": fname})
			return sema.Do(ctx, func(ctx context.Context) error {
				p, err := d.decodeFile(ctx, fs, fname)
				if err != nil {
					return err
				}
				if clog.V(ctx, 1) {
					clog.Infof(ctx, "decoded: clang args=%d framework includes=%d swift includes=%d", len(p.ClangArgs), len(p.FrameworkIncludes), len(p.SwiftIncludes))
				}
				payloads[i] = p
				return nil
			})
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	clog.Infof(ctx, "decoded %d debug settings files in %s: %s [%s cap=%d reqs=%d]", len(fnames), time.Since(started), fs.Stats(), sema.Name(), sema.Capacity(), sema.NumRequests())
	return payloads, nil
}

// MergeFiles decodes the transitive debug settings files concurrently, then
// merges them into c in the order of fnames.
// On error, c is not modified.
func (d Decoder) MergeFiles(ctx context.Context, c *Collector, fnames []string) error {
	if len(fnames) == 0 {
		return nil
	}
	payloads, err := d.DecodeFiles(ctx, fnames)
	if err != nil {
		return err
	}
	for _, p := range payloads {
		c.Merge(p)
	}
	return nil
}
