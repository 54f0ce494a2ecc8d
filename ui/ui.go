// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package ui reports messages to the user running xcsettings.
package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// IsTerminal returns whether stderr is a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// StripANSIEscapeCodes strips CSI escape sequences, such as colors in
// messages of wrapped compilers.
func StripANSIEscapeCodes(s string) string {
	if !strings.Contains(s, "\033") {
		return s
	}
	var sb strings.Builder
	for {
		before, after, ok := strings.Cut(s, "\033")
		sb.WriteString(before)
		if !ok {
			return sb.String()
		}
		if !strings.HasPrefix(after, "[") {
			// incomplete or not a CSI. drop the ESC only.
			s = after
			continue
		}
		// CSI ends with a final byte in [a-zA-Z].
		i := strings.IndexFunc(after[1:], func(r rune) bool {
			return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		})
		if i < 0 {
			return sb.String()
		}
		s = after[1+i+1:]
	}
}
