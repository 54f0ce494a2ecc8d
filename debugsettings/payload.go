// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package debugsettings collects, encodes and merges the Swift debug settings
// of a target: clang args, framework search paths and swift module search
// paths that lldb needs to import the target's Swift module.
package debugsettings

import "strings"

// Payload is the Swift debug settings of a target.
type Payload struct {
	ClangArgs         []string
	FrameworkIncludes []string
	SwiftIncludes     []string
}

// OrderedSet is a set of strings that keeps the insertion order.
// The zero value is an empty set.
type OrderedSet struct {
	items []string
	index map[string]struct{}
}

// Add adds v to the set, and reports whether it was added.
// Adding a value already in the set is a no-op, and keeps its position.
func (s *OrderedSet) Add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

// Contains reports whether v is in the set.
func (s *OrderedSet) Contains(v string) bool {
	_, ok := s.index[v]
	return ok
}

// Len returns the number of values in the set.
func (s *OrderedSet) Len() int {
	return len(s.items)
}

// Items returns the values in insertion order.
func (s *OrderedSet) Items() []string {
	return append([]string(nil), s.items...)
}

// onceClangArgPrefixes are prefixes of clang args that are recorded at most
// once when merging transitive debug settings.
var onceClangArgPrefixes = []string{
	"-F",
	"-D",
	"-I",
	"-fmodule-map-file=",
	"-ivfsoverlay",
}

func isOnceClangArg(arg string) bool {
	for _, prefix := range onceClangArgPrefixes {
		if strings.HasPrefix(arg, prefix) {
			return true
		}
	}
	return false
}

// Collector accumulates the debug settings of a target and the transitive
// debug settings of its dependencies.
// Recorded values are never removed or reordered.
type Collector struct {
	clangArgs         []string
	onceClangArgs     map[string]struct{}
	frameworkIncludes OrderedSet
	swiftIncludes     OrderedSet
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		onceClangArgs: make(map[string]struct{}),
	}
}

// AddClangArg records a clang arg.
// If once is true, arg is skipped if the same arg was already recorded,
// with or without once.
func (c *Collector) AddClangArg(arg string, once bool) {
	_, seen := c.onceClangArgs[arg]
	if once && seen {
		return
	}
	c.onceClangArgs[arg] = struct{}{}
	c.clangArgs = append(c.clangArgs, arg)
}

// AddFrameworkInclude records a framework search path.
func (c *Collector) AddFrameworkInclude(path string) {
	c.frameworkIncludes.Add(path)
}

// AddSwiftInclude records a swift module search path.
func (c *Collector) AddSwiftInclude(path string) {
	c.swiftIncludes.Add(path)
}

// Merge folds the debug settings of a dependency into c.
// Clang args with a once prefix are skipped if already recorded.
func (c *Collector) Merge(p *Payload) {
	for _, arg := range p.ClangArgs {
		c.AddClangArg(arg, isOnceClangArg(arg))
	}
	for _, path := range p.FrameworkIncludes {
		c.frameworkIncludes.Add(path)
	}
	for _, path := range p.SwiftIncludes {
		c.swiftIncludes.Add(path)
	}
}

// Payload returns a snapshot of the collected debug settings.
func (c *Collector) Payload() *Payload {
	return &Payload{
		ClangArgs:         append([]string(nil), c.clangArgs...),
		FrameworkIncludes: c.frameworkIncludes.Items(),
		SwiftIncludes:     c.swiftIncludes.Items(),
	}
}
