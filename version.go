/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package docstore

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/richie6280/docstore/registry"
)

// Build metadata, overridden with -ldflags "-X github.com/richie6280/docstore.GitCommit=..."
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// VersionInfo describes the running build and the drivers linked into it
type VersionInfo struct {
	Version   string   `json:"version"`
	GitCommit string   `json:"gitCommit"`
	BuildDate string   `json:"buildDate"`
	GoVersion string   `json:"goVersion"`
	Drivers   []string `json:"drivers"`
}

// GetVersionInfo returns the version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Drivers:   registry.Drivers(),
	}
}

func (v VersionInfo) String() string {
	drivers := "none"
	if len(v.Drivers) > 0 {
		drivers = strings.Join(v.Drivers, ", ")
	}
	return fmt.Sprintf("docstore %s (commit %s, built %s, %s)\ndrivers: %s",
		v.Version, v.GitCommit, v.BuildDate, v.GoVersion, drivers)
}
