package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/dsm"
)

func testClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

// TestTagSource parses a candidate out of the latest release tag.
func TestTagSource(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "1.42.1.10060-4e8b05daf"}`))
	}))
	defer ts.Close()

	source := &TagSource{URL: ts.URL, Client: testClient()}

	got, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.NoError(t, err)
	require.Equal(t, release.Tuple{Major: 1, Minor: 42, Patch: 1, Build: 10060}, got.Version)
	require.Equal(t, "4e8b05daf", got.BuildID)
}

// TestTagSourceBadTag ensures a tag without a version token is a failure,
// never an empty candidate.
func TestTagSourceBadTag(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name": "latest"}`))
	}))
	defer ts.Close()

	source := &TagSource{URL: ts.URL, Client: testClient()}

	_, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.ErrorIs(t, err, release.ErrNoVersion)
}

// TestTagSourceHTTPError ensures non-200 statuses fail the source.
func TestTagSourceHTTPError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	source := &TagSource{URL: ts.URL, Client: testClient()}

	_, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.Error(t, err)
}

// TestDownloadsSource reads the Synology DSM 7 section and carries the
// architecture-matching checksum on the candidate.
func TestDownloadsSource(t *testing.T) {
	t.Parallel()

	payload := `{
		"nas": {
			"Synology": {"version": "1.40.0.1-old", "releases": []},
			"Synology (DSM 7)": {
				"version": "1.42.1.10060-4e8b05daf",
				"releases": [
					{"build": "linux-aarch64", "url": "https://x/a.spk", "checksum": "feed"},
					{"build": "linux-x86_64", "url": "https://x/b.spk", "checksum": "cafe"}
				]
			}
		}
	}`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer ts.Close()

	source := &DownloadsSource{URL: ts.URL, Client: testClient()}

	got, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.NoError(t, err)
	require.Equal(t, release.Tuple{Major: 1, Minor: 42, Patch: 1, Build: 10060}, got.Version)
	require.Equal(t, "4e8b05daf", got.BuildID)
	require.Equal(t, "cafe", got.ChecksumSHA1)
}

// TestDownloadsSourceFallbackDeterministic pins the fallback when no DSM 7
// section exists: the lexically greatest Synology key wins, every run.
func TestDownloadsSourceFallbackDeterministic(t *testing.T) {
	t.Parallel()

	payload := `{
		"nas": {
			"Synology": {"version": "1.40.0.1-aaaaaaaaa", "releases": []},
			"Synology (DSM 6)": {"version": "1.41.0.2-bbbbbbbbb", "releases": []}
		}
	}`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer ts.Close()

	source := &DownloadsSource{URL: ts.URL, Client: testClient()}

	for range 5 {
		got, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
		require.NoError(t, err)
		require.Equal(t, release.Tuple{Major: 1, Minor: 41, Patch: 0, Build: 2}, got.Version)
		require.Equal(t, "bbbbbbbbb", got.BuildID)
	}
}

// TestDownloadsSourceNoSynology fails when the payload has no usable section.
func TestDownloadsSourceNoSynology(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"nas": {"QNAP": {"version": "1.2.3.4"}}}`))
	}))
	defer ts.Close()

	source := &DownloadsSource{URL: ts.URL, Client: testClient()}

	_, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.ErrorIs(t, err, release.ErrNoVersion)
}

// TestPageSource scrapes the first version-shaped token out of page text.
func TestPageSource(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<a href="/pms/1.42.1.10060-4e8b05daf/synology-dsm72/pkg.spk">download</a>
		<a href="/pms/9.9.9.9-fff/other.spk">nightly</a>
	</body></html>`

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer ts.Close()

	source := &PageSource{URL: ts.URL, Client: testClient()}

	got, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.NoError(t, err)
	require.Equal(t, release.Tuple{Major: 1, Minor: 42, Patch: 1, Build: 10060}, got.Version)
	require.Equal(t, "4e8b05daf", got.BuildID)
}

// TestPageSourceEmpty treats a page without version tokens as a parse
// failure, not as a valid "no update" signal.
func TestPageSourceEmpty(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
	}))
	defer ts.Close()

	source := &PageSource{URL: ts.URL, Client: testClient()}

	_, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.ErrorIs(t, err, release.ErrNoVersion)
}

// TestProbeSource verifies the guess-and-verify fallback: only the hash
// whose artifact answers 200 to HEAD becomes a candidate.
func TestProbeSource(t *testing.T) {
	t.Parallel()

	const goodPath = "/1.42.1.10060-bbb222cc/synology-dsm72/PlexMediaServer-1.42.1.10060-bbb222cc-x86_64_DSM72.spk"

	var heads int

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)

		heads++

		if r.URL.Path == goodPath {
			w.WriteHeader(http.StatusOK)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	current := release.InstalledState{
		Version: release.Tuple{Major: 1, Minor: 42, Patch: 1, Build: 10060},
		BuildID: "aaa111bb",
	}

	source := &ProbeSource{
		ArtifactBaseURL: ts.URL,
		Hashes:          []string{"aaa111bb", "dead00ff", "bbb222cc"},
		Client:          testClient(),
	}

	got, err := source.Query(context.Background(), current, dsm.ArchX8664)
	require.NoError(t, err)
	require.Equal(t, current.Version, got.Version)
	require.Equal(t, "bbb222cc", got.BuildID)
	// The installed hash is skipped, so only two candidates were probed.
	require.Equal(t, 2, heads)
}

// TestProbeSourceNothingInstalled refuses to guess without a version base.
func TestProbeSourceNothingInstalled(t *testing.T) {
	t.Parallel()

	source := &ProbeSource{ArtifactBaseURL: "https://unused", Hashes: []string{"aaa"}, Client: testClient()}

	_, err := source.Query(context.Background(), release.NotInstalled, dsm.ArchX8664)
	require.ErrorIs(t, err, errNothingToProbe)
}

// TestProbeSourceExhausted reports failure when no guess verifies.
func TestProbeSourceExhausted(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	current := release.InstalledState{Version: release.Tuple{Major: 1, Minor: 42, Patch: 1, Build: 10060}, BuildID: "aaa"}
	source := &ProbeSource{ArtifactBaseURL: ts.URL, Hashes: []string{"bbb", "ccc"}, Client: testClient()}

	_, err := source.Query(context.Background(), current, dsm.ArchX8664)
	require.ErrorIs(t, err, errNoProbeHit)
}
