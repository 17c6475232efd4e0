package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/dsm"
	"github.com/synoplex/plex-updater/internal/logger"
)

var (
	// errNothingToProbe is returned when there is no installed version to
	// derive probe candidates from.
	errNothingToProbe = errors.New("no installed version to derive probe candidates from")
	// errNoProbeHit is returned when none of the guessed artifacts exist.
	errNoProbeHit = errors.New("no probe candidate verified")
)

// ProbeSource is the last-resort guess-and-verify fallback: it pairs the
// currently installed version base with a small fixed list of plausible
// build hashes and HEADs the artifact URL each pairing would have. The
// hash list has no authoritative upstream and goes stale, so every use is
// logged as best-effort; results are only trusted because the artifact
// demonstrably exists.
type ProbeSource struct {
	ArtifactBaseURL string
	// Hashes is the bounded guess list, taken from config.
	Hashes []string
	Client *http.Client
}

// Name implements Source.
func (s *ProbeSource) Name() string {
	return "head-probe"
}

// Query HEADs one artifact URL per guessed hash and returns the first
// candidate whose artifact exists. The candidate set is fixed and small;
// this is not unbounded probing.
func (s *ProbeSource) Query(
	ctx context.Context,
	current release.InstalledState,
	arch dsm.Architecture,
) (release.Candidate, error) {
	if !current.Installed() {
		return release.Candidate{}, errNothingToProbe
	}

	logger.WarnKV(ctx, "Falling back to best-effort artifact probing",
		"guesses", len(s.Hashes))

	for _, hash := range s.Hashes {
		if hash == "" || hash == current.BuildID {
			continue
		}

		candidate := release.Candidate{
			Version: current.Version,
			BuildID: hash,
		}

		exists, err := s.artifactExists(ctx, candidate, arch)
		if err != nil {
			logger.WarnKV(ctx, "Probe attempt failed",
				"release", candidate.Release(), "error", err)

			continue
		}

		if exists {
			return candidate, nil
		}

		logger.DebugKV(ctx, "Probe candidate not published", "release", candidate.Release())
	}

	return release.Candidate{}, errNoProbeHit
}

// artifactExists performs the HEAD existence check for one candidate.
func (s *ProbeSource) artifactExists(
	ctx context.Context,
	candidate release.Candidate,
	arch dsm.Architecture,
) (bool, error) {
	artifactURL, err := dsm.ArtifactURL(s.ArtifactBaseURL, candidate, arch)
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, artifactURL, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("build probe request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", artifactURL, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	return resp.StatusCode == http.StatusOK, nil
}
