// Package version holds the updater's own build identification.
//
// Version, Commit, and BuildTime are stamped through -ldflags during a
// release build; unstamped builds fall back to placeholder values. The
// media server package being managed carries its own version and is
// handled by the release domain, not here.
package version
