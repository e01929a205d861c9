// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "fmt"

// Name is the binary name printed by -version and logged at startup.
const Name = "formtrans"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String formats the info for -version. Fields left empty by the build
// print as "dev" and "unknown".
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s)",
		Name, or(i.Version, "dev"), or(i.GitCommit, "unknown"), or(i.BuildTime, "unknown"))
}

func or(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
