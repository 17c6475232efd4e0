package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/dsm"
)

// DownloadsSource queries the JSON downloads API. Unlike the tag API it
// also exposes per-artifact checksums, which we carry on the candidate so
// the installer can verify the download.
type DownloadsSource struct {
	URL    string
	Client *http.Client
}

// downloadsDocument mirrors the downloads API payload: platform sections
// keyed by display name, each with a version string and artifact list.
type downloadsDocument struct {
	NAS map[string]downloadsEntry `json:"nas"`
}

type downloadsEntry struct {
	Version  string             `json:"version"`
	Releases []downloadsRelease `json:"releases"`
}

type downloadsRelease struct {
	Build    string `json:"build"`
	URL      string `json:"url"`
	Checksum string `json:"checksum"`
}

// Name implements Source.
func (s *DownloadsSource) Name() string {
	return "downloads-api"
}

// Query fetches the downloads document and parses the Synology entry's
// release string, preferring the DSM 7 section when present.
func (s *DownloadsSource) Query(
	ctx context.Context,
	_ release.InstalledState,
	arch dsm.Architecture,
) (release.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, http.NoBody)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("build downloads request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("query downloads API: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return release.Candidate{}, fmt.Errorf("%s: %w", resp.Status, errBadHTTPStatus)
	}

	var document downloadsDocument
	if err = json.NewDecoder(resp.Body).Decode(&document); err != nil {
		return release.Candidate{}, fmt.Errorf("decode downloads payload: %w", err)
	}

	entry, err := synologyEntry(document)
	if err != nil {
		return release.Candidate{}, err
	}

	candidate, err := release.Parse(entry.Version)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("parse release string %q: %w", entry.Version, err)
	}

	candidate.ChecksumSHA1 = checksumForArch(entry, arch)

	return candidate, nil
}

// synologyEntry picks the Synology platform section, preferring DSM 7.
// Without a DSM 7 section it falls back to the lexically greatest Synology
// key, so repeated runs over the same payload agree on one section and a
// newer DSM generation wins over an older one.
func synologyEntry(document downloadsDocument) (downloadsEntry, error) {
	var names []string

	for name := range document.NAS {
		if strings.Contains(name, "Synology") {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return downloadsEntry{}, fmt.Errorf("no Synology section in downloads payload: %w", release.ErrNoVersion)
	}

	sort.Strings(names)

	for _, name := range names {
		if strings.Contains(name, "DSM 7") {
			return document.NAS[name], nil
		}
	}

	return document.NAS[names[len(names)-1]], nil
}

// checksumForArch returns the published checksum of the artifact matching
// the architecture, or empty when none matches.
func checksumForArch(entry downloadsEntry, arch dsm.Architecture) string {
	for _, artifact := range entry.Releases {
		if strings.HasSuffix(artifact.Build, string(arch)) {
			return artifact.Checksum
		}
	}

	return ""
}
