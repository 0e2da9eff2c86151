// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded at link time:
//
//	go build -ldflags "-X binaural/pkg/build.buildName=binaural \
//	    -X binaural/pkg/build.buildVersion=0.1.0 ..."
//
// Development builds carry no flags; Info then reports "dev" placeholders
// and Initialize says which flag is missing.
package build

import (
	"errors"
	"fmt"
)

// ErrMissingFlag is returned by Initialize when an ldflag was not set.
var ErrMissingFlag = errors.New("build: missing ldflag")

// Info describes the running binary.
type Info struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats Info for --version output.
func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", i.Version, i.Commit, i.Time)
}

// Package-level variables for build information. These are populated by
// -ldflags during compilation.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = Info{
		Name:        "binaural",
		Description: "Binaural HRTF spatialization and reverb renderer",
		Time:        "dev",
		Commit:      "dev",
		Version:     "dev",
	}
)

// Initialize copies the ldflags variables into the build Info. Flags that
// were set are applied even when another is missing; the first missing flag
// is reported as ErrMissingFlag.
func Initialize() error {
	var missing error
	for _, f := range []struct {
		name string
		val  string
		dst  *string
	}{
		{"buildName", buildName, &buildInfo.Name},
		{"buildTime", buildTime, &buildInfo.Time},
		{"buildCommit", buildCommit, &buildInfo.Commit},
		{"buildVersion", buildVersion, &buildInfo.Version},
	} {
		if f.val == "" {
			if missing == nil {
				missing = fmt.Errorf("%w: %s", ErrMissingFlag, f.name)
			}
			continue
		}
		*f.dst = f.val
	}
	return missing
}

// GetInfo returns the current build information.
func GetInfo() Info {
	return buildInfo
}
