package version

import "fmt"

// Build metadata, overridden at release time via -ldflags. Local builds
// keep the placeholders.
var (
	// Version is the updater's own semantic version.
	Version = "0.3.0"
	// Commit is the short git SHA of the build.
	Commit = "none"
	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"
)

// Short returns the bare semantic version.
func Short() string {
	return Version
}

// Full renders a single-line identification suitable for CLI output.
func Full() string {
	return fmt.Sprintf("plex-updater %s (commit %s, built %s)", Version, Commit, BuildTime)
}
