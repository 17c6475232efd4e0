package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/dsm"
)

// pageReadLimit caps how much of the download page is read. Version tokens
// appear early; anything past a couple of megabytes is not a download page.
const pageReadLimit = 2 << 20

// PageSource scrapes the public download page for the first version-shaped
// token. It is a weaker signal than the structured APIs and sits behind
// them in the chain.
type PageSource struct {
	URL    string
	Client *http.Client
}

// Name implements Source.
func (s *PageSource) Name() string {
	return "download-page"
}

// Query fetches the page and parses the first version token out of the raw text.
func (s *PageSource) Query(
	ctx context.Context,
	_ release.InstalledState,
	_ dsm.Architecture,
) (release.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, http.NoBody)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("build page request: %w", err)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("fetch download page: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return release.Candidate{}, fmt.Errorf("%s: %w", resp.Status, errBadHTTPStatus)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, pageReadLimit))
	if err != nil {
		return release.Candidate{}, fmt.Errorf("read download page: %w", err)
	}

	candidate, err := release.Parse(string(body))
	if err != nil {
		return release.Candidate{}, fmt.Errorf("scrape download page: %w", err)
	}

	return candidate, nil
}
