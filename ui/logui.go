// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// LogUI reports messages to the user invoking the tool, i.e. the build
// system's action output, not diagnostic logs.
type LogUI struct {
	logger   *log.Logger
	colorize bool
}

// New returns a LogUI writing to w.
// If colorize is false, ANSI escape sequences are stripped from messages
// and the log level is not styled.
func New(w io.Writer, colorize bool) *LogUI {
	logger := log.NewWithOptions(w, log.Options{})
	if colorize {
		logger.SetColorProfile(termenv.ANSI)
	} else {
		logger.SetColorProfile(termenv.Ascii)
	}
	return &LogUI{logger: logger, colorize: colorize}
}

func (u *LogUI) format(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if u.colorize {
		return msg
	}
	return StripANSIEscapeCodes(msg)
}

// Errorf reports an error.
func (u *LogUI) Errorf(format string, args ...any) {
	u.logger.Helper()
	u.logger.Error(u.format(format, args...))
}
