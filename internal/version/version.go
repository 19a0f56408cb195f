// Package version provides application version and build info.
package version

import (
	"fmt"
	"runtime/debug"
)

// Version is the current application version; overridable by ldflags.
var Version = "dev"

// GetInfo returns the version string, with the short VCS revision when available.
func GetInfo() string {
	revision := ""
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				revision = setting.Value
			}
		}
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if revision == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, revision)
}
