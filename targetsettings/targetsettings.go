// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package targetsettings generates the Xcode build settings and Swift debug
// settings of a target from its Swift, C and C++ compiler args.
package targetsettings

import (
	"context"
	"fmt"
	"time"

	"go.chromium.org/infra/build/xcsettings/argstream"
	"go.chromium.org/infra/build/xcsettings/debugsettings"
	"go.chromium.org/infra/build/xcsettings/o11y/clog"
	"go.chromium.org/infra/build/xcsettings/toolsupport/gccutil"
	"go.chromium.org/infra/build/xcsettings/toolsupport/shutil"
	"go.chromium.org/infra/build/xcsettings/toolsupport/swiftutil"
	"go.chromium.org/infra/build/xcsettings/toolsupport/xcodeutil"
)

// Target is the target level configuration.
type Target struct {
	DeviceFamily                      string
	ExtensionSafe                     bool
	GeneratesDsyms                    bool
	InfoPlist                         string
	Entitlements                      string
	SkipCodesigning                   bool
	CertificateName                   string
	ProvisioningProfileName           string
	TeamID                            string
	ProvisioningProfileIsXcodeManaged bool
	PreviewsFrameworkPaths            string
	PreviewsIncludePath               string
}

// Options controls Generate.
type Options struct {
	Target

	// GenerateBuildSettings reports whether build settings are needed.
	// If false, only the Swift section is read, for the debug settings.
	GenerateBuildSettings bool

	IncludeSelfSwiftDebugSettings    bool
	TransitiveSwiftDebugSettingPaths []string

	// Decoder decodes TransitiveSwiftDebugSettingPaths.
	Decoder debugsettings.Decoder
}

// ParamsFile is a C or C++ compile params file to write.
type ParamsFile struct {
	Path    string
	Content []byte
}

// Result is the generated settings of a target.
type Result struct {
	BuildSettings *xcodeutil.Settings
	DebugSettings *debugsettings.Payload
	ParamsFiles   []ParamsFile
}

// Generate reads the Swift, C and C++ sections from src in that order,
// and returns the settings of the target.
// Nothing is written; the caller writes the result when everything succeeded.
func Generate(ctx context.Context, src argstream.Source, opts Options) (*Result, error) {
	started := time.Now()
	settings := &xcodeutil.Settings{}
	swift, err := swiftutil.Translate(ctx, src, settings, swiftutil.Options{
		IncludeSelfDebugSettings: opts.IncludeSelfSwiftDebugSettings,
		TransitiveDebugSettings:  opts.TransitiveSwiftDebugSettingPaths,
		PreviewsFrameworkPaths:   opts.PreviewsFrameworkPaths,
		PreviewsIncludePath:      opts.PreviewsIncludePath,
		Decoder:                  opts.Decoder,
	})
	if err != nil {
		return nil, fmt.Errorf("swift args: %w", err)
	}
	result := &Result{
		BuildSettings: &xcodeutil.Settings{},
		DebugSettings: swift.DebugSettings,
	}
	if !opts.GenerateBuildSettings {
		return result, nil
	}
	result.BuildSettings = settings

	hasDebugInfo := swift.HasDebugInfo
	for _, lang := range []gccutil.Lang{gccutil.C, gccutil.CXX} {
		p, err := gccutil.Translate(ctx, src, lang, settings)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		hasDebugInfo = hasDebugInfo || p.HasDebugInfo
		result.ParamsFiles = append(result.ParamsFiles, ParamsFile{
			Path:    p.OutputPath,
			Content: p.Content(),
		})
	}
	opts.Target.addSettings(settings, opts.GeneratesDsyms || hasDebugInfo)
	clog.Infof(ctx, "generated %d build settings, %d params files in %s", settings.Len(), len(result.ParamsFiles), time.Since(started))
	return result, nil
}

func (t Target) addSettings(settings *xcodeutil.Settings, hasDebugInfo bool) {
	if !hasDebugInfo {
		// dSYMs are generated by bazel, and the format is set at
		// the project level.
		settings.Add("DEBUG_INFORMATION_FORMAT", `""`)
	}
	if t.DeviceFamily != "" {
		settings.Add("TARGETED_DEVICE_FAMILY", xcodeutil.PBXProjEscape(t.DeviceFamily))
	}
	if t.ExtensionSafe {
		settings.Add("APPLICATION_EXTENSION_API_ONLY", "YES")
	}
	if t.InfoPlist != "" {
		settings.Add("INFOPLIST_FILE", xcodeutil.PBXProjEscape(shutil.Quote(xcodeutil.BuildSettingPath(t.InfoPlist))))
	}
	if t.Entitlements != "" {
		settings.Add("CODE_SIGN_ENTITLEMENTS", xcodeutil.PBXProjEscape(shutil.Quote(xcodeutil.BuildSettingPath(t.Entitlements))))
		// generated entitlements are modified by the bazel build.
		settings.Add("CODE_SIGN_ALLOW_ENTITLEMENTS_MODIFICATION", "YES")
	}
	if t.SkipCodesigning {
		settings.Add("CODE_SIGNING_ALLOWED", "NO")
	}
	if t.CertificateName != "" {
		settings.Add("CODE_SIGN_IDENTITY", xcodeutil.PBXProjEscape(t.CertificateName))
	}
	if t.TeamID != "" {
		settings.Add("DEVELOPMENT_TEAM", xcodeutil.PBXProjEscape(t.TeamID))
	}
	if t.ProvisioningProfileName != "" {
		settings.Add("PROVISIONING_PROFILE_SPECIFIER", xcodeutil.PBXProjEscape(t.ProvisioningProfileName))
	}
	if t.ProvisioningProfileIsXcodeManaged {
		settings.Add("CODE_SIGN_STYLE", "Automatic")
	}
}
