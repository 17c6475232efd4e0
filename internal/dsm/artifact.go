package dsm

import (
	"fmt"
	"net/url"
	"path"

	"github.com/synoplex/plex-updater/internal/domain/release"
)

const (
	// PackageName is the upstream package name, also the DSM package id.
	PackageName = "PlexMediaServer"

	// Platform is the DSM platform suffix baked into artifact filenames.
	Platform = "DSM72"

	// platformPath is the per-platform directory on the artifact host.
	platformPath = "synology-dsm72"

	// packageExtension is the Synology package file extension.
	packageExtension = "spk"
)

// ArtifactFilename renders the package filename upstream publishes for a
// release and architecture, e.g.
// "PlexMediaServer-1.42.1.10060-4e8b05daf-x86_64_DSM72.spk".
func ArtifactFilename(candidate release.Candidate, arch Architecture) string {
	return fmt.Sprintf("%s-%s-%s_%s.%s",
		PackageName, candidate.Release(), arch, Platform, packageExtension)
}

// ArtifactURL composes the full download URL for a release candidate:
// {base}/{version}-{hash}/{platform-path}/{filename}.
func ArtifactURL(baseURL string, candidate release.Candidate, arch Architecture) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse artifact base URL: %w", err)
	}

	// path.Join also normalizes duplicate slashes in the configured base.
	parsed.Path = path.Join(parsed.Path, candidate.Release(), platformPath,
		ArtifactFilename(candidate, arch))

	return parsed.String(), nil
}
