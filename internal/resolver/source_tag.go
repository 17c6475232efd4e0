package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/dsm"
)

// errBadHTTPStatus flags a non-200 answer from an upstream source.
var errBadHTTPStatus = errors.New("unexpected http status")

// TagSource queries a structured release-metadata API whose latest release
// is identified by a tag string shaped like "1.42.1.10060-4e8b05daf".
type TagSource struct {
	URL    string
	Client *http.Client
}

// tagRelease is the subset of the release metadata payload we read.
type tagRelease struct {
	TagName string `json:"tag_name"`
}

// Name implements Source.
func (s *TagSource) Name() string {
	return "tag-api"
}

// Query fetches the latest release metadata and parses its tag.
func (s *TagSource) Query(
	ctx context.Context,
	_ release.InstalledState,
	_ dsm.Architecture,
) (release.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, http.NoBody)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("build tag request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("query tag API: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return release.Candidate{}, fmt.Errorf("%s: %w", resp.Status, errBadHTTPStatus)
	}

	var payload tagRelease
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return release.Candidate{}, fmt.Errorf("decode tag payload: %w", err)
	}

	candidate, err := release.Parse(payload.TagName)
	if err != nil {
		return release.Candidate{}, fmt.Errorf("parse tag %q: %w", payload.TagName, err)
	}

	return candidate, nil
}
