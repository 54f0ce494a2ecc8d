// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package xcodeutil

import "strings"

var debugSettingsEscaper = strings.NewReplacer(
	" ", `\ `,
	`"`, `\"`,
)

// EscapeForDebugSettings escapes s to be used in lldb's
// target.swift-extra-clang-flags and search path settings.
func EscapeForDebugSettings(s string) string {
	return debugSettingsEscaper.Replace(s)
}

// PBXProjEscape escapes s to be used as a value in a project.pbxproj file.
func PBXProjEscape(s string) string {
	if s == "" {
		return `""`
	}
	if !needsPBXProjQuote(s) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func needsPBXProjQuote(s string) bool {
	if strings.Contains(s, "//") || strings.Contains(s, "___") {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		case c == '_', c == '$', c == '/', c == ':', c == '.', c == '-':
		default:
			return true
		}
	}
	return false
}
