package dsm

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/logger"
)

// DefaultInfoPath is where DSM keeps the installed package metadata.
const DefaultInfoPath = "/var/packages/" + PackageName + "/INFO"

// ReadInstalledState reads the installed version and build identifier from
// a DSM package INFO file: key="value" lines, with the version stored as
// `version="X.Y.Z.W-hash"`. A missing file means the package is not
// installed and yields the NotInstalled sentinel, not an error.
//
// Malformed version values degrade component-wise to zero with a logged
// warning; this is deliberately more forgiving than upstream parsing,
// because refusing to run over sloppy local metadata would block updates
// on exactly the machines that need them.
func ReadInstalledState(ctx context.Context, path string) (release.InstalledState, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			logger.InfoKV(ctx, "Package metadata not found, assuming fresh install", "path", path)
			return release.NotInstalled, nil
		}

		return release.NotInstalled, fmt.Errorf("open package metadata: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		key, value, found := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !found || key != "version" {
			continue
		}

		return parseInstalledVersion(ctx, strings.Trim(value, `"`)), nil
	}

	if err := scanner.Err(); err != nil {
		return release.NotInstalled, fmt.Errorf("read package metadata: %w", err)
	}

	logger.WarnKV(ctx, "Package metadata has no version key", "path", path)

	return release.NotInstalled, nil
}

// parseInstalledVersion splits "X.Y.Z.W-hash" into tuple and build id.
func parseInstalledVersion(ctx context.Context, value string) release.InstalledState {
	dotted, buildID, _ := strings.Cut(value, "-")

	tuple, clean := release.TupleFromParts(strings.Split(dotted, "."))
	if !clean {
		logger.WarnKV(ctx, "Installed version is malformed, degrading components to zero",
			"raw", value, "parsed", tuple.String())
	}

	return release.InstalledState{
		Version: tuple,
		BuildID: buildID,
	}
}
