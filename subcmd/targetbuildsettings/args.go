// Copyright 2024 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package targetbuildsettings

import (
	"flag"
	"fmt"

	"go.chromium.org/infra/build/xcsettings/argstream"
	"go.chromium.org/infra/build/xcsettings/targetsettings"
)

// invocation is the parsed positional arguments.
type invocation struct {
	buildSettingsOutputPath      string
	swiftDebugSettingsOutputPath string
	opts                         targetsettings.Options

	// args are the compiler args streams.
	args []string
}

type positional []string

func (p *positional) pop(name string) (string, error) {
	if len(*p) == 0 {
		return "", fmt.Errorf("missing <%s>: %w", name, flag.ErrHelp)
	}
	arg := (*p)[0]
	*p = (*p)[1:]
	return arg, nil
}

func (p *positional) popBool(name string) (bool, error) {
	arg, err := p.pop(name)
	return arg == "1", err
}

func parseArgs(args []string) (*invocation, error) {
	p := positional(args)
	inv := &invocation{}
	var err error
	inv.buildSettingsOutputPath, err = p.pop("build-settings-output-path")
	if err != nil {
		return nil, err
	}
	inv.opts.GenerateBuildSettings = inv.buildSettingsOutputPath != ""

	inv.swiftDebugSettingsOutputPath, err = p.pop("swift-debug-settings-output-path")
	if err != nil {
		return nil, err
	}
	if inv.swiftDebugSettingsOutputPath != "" {
		inv.opts.IncludeSelfSwiftDebugSettings, err = p.popBool("include-self-swift-debug-settings")
		if err != nil {
			return nil, err
		}
		for {
			path, err := p.pop("transitive-swift-debug-setting-paths")
			if err != nil {
				return nil, err
			}
			if path == argstream.Separator {
				break
			}
			inv.opts.TransitiveSwiftDebugSettingPaths = append(inv.opts.TransitiveSwiftDebugSettingPaths, path)
		}
	}

	t := &inv.opts.Target
	for _, a := range []struct {
		name string
		s    *string
		b    *bool
	}{
		{name: "device-family", s: &t.DeviceFamily},
		{name: "extension-safe", b: &t.ExtensionSafe},
		{name: "generates-dsyms", b: &t.GeneratesDsyms},
		{name: "info-plist", s: &t.InfoPlist},
		{name: "entitlements", s: &t.Entitlements},
		{name: "skip-codesigning", b: &t.SkipCodesigning},
		{name: "certificate-name", s: &t.CertificateName},
		{name: "provisioning-profile-name", s: &t.ProvisioningProfileName},
		{name: "team-id", s: &t.TeamID},
		{name: "provisioning-profile-is-xcode-managed", b: &t.ProvisioningProfileIsXcodeManaged},
		{name: "previews-framework-paths", s: &t.PreviewsFrameworkPaths},
		{name: "previews-include-path", s: &t.PreviewsIncludePath},
	} {
		if a.b != nil {
			*a.b, err = p.popBool(a.name)
		} else {
			*a.s, err = p.pop(a.name)
		}
		if err != nil {
			return nil, err
		}
	}
	inv.args = p
	return inv, nil
}
