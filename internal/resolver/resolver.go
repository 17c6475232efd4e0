package resolver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/synoplex/plex-updater/internal/config"
	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/dsm"
	"github.com/synoplex/plex-updater/internal/logger"
)

// Source is one upstream query strategy in the fallback chain.
// Implementations perform a single bounded network exchange and either
// produce a fully parsed candidate or an error; they never return
// partial results.
type Source interface {
	// Name identifies the source in logs and candidate attribution.
	Name() string
	// Query attempts to determine the latest release for the architecture.
	// The current installed state is passed explicitly so heuristic
	// sources stay free of hidden global state.
	Query(ctx context.Context, current release.InstalledState, arch dsm.Architecture) (release.Candidate, error)
}

// ErrResolutionFailed is returned when every source has been tried and
// none produced a candidate. The run treats this as fatal.
var ErrResolutionFailed = errors.New("all release sources exhausted")

// Resolver walks an ordered list of sources and returns the first
// confidently parsed candidate. Sources are tried strictly in sequence,
// never in parallel, so a single flaky upstream degrades gracefully
// without hammering the others.
type Resolver struct {
	sources []Source
}

// New builds the production resolver: tag API, downloads JSON API, download
// page scrape, and the HEAD-probe heuristic, in that priority order. Every
// source shares one HTTP client whose timeout bounds each call; a hung
// upstream cannot stall the chain.
func New(cfg *config.Config) *Resolver {
	client := newHTTPClient(cfg.Timeout)

	return NewWithSources(
		&TagSource{URL: cfg.TagReleasesURL, Client: client},
		&DownloadsSource{URL: cfg.DownloadsURL, Client: client},
		&PageSource{URL: cfg.DownloadPageURL, Client: client},
		&ProbeSource{ArtifactBaseURL: cfg.ArtifactBaseURL, Hashes: cfg.ProbeHashes, Client: client},
	)
}

// NewWithSources builds a resolver over an explicit source list.
func NewWithSources(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

// Resolve queries the sources in order and returns the first candidate,
// attributed to the source that produced it. Per-source failures are
// logged and swallowed; only cumulative exhaustion is reported up.
func (r *Resolver) Resolve(
	ctx context.Context,
	current release.InstalledState,
	arch dsm.Architecture,
) (release.Candidate, error) {
	for _, source := range r.sources {
		candidate, err := source.Query(ctx, current, arch)
		if err != nil {
			logger.WarnKV(ctx, "Release source failed, falling through",
				"source", source.Name(), "error", err)

			continue
		}

		candidate.Source = source.Name()

		logger.InfoKV(ctx, "Resolved latest release",
			"source", candidate.Source, "release", candidate.Release())

		return candidate, nil
	}

	return release.Candidate{}, ErrResolutionFailed
}

// newHTTPClient returns a client with an explicit per-call timeout.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}

	return &http.Client{Timeout: timeout}
}
