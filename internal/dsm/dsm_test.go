package dsm

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/synoplex/plex-updater/internal/domain/release"
)

// TestParseArchitecture validates the supported set and rejects the rest.
func TestParseArchitecture(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"x86_64", "x86", "armv7hf", "aarch64", " X86_64 "} {
		arch, err := ParseArchitecture(input)
		require.NoError(t, err, "input %q", input)
		require.NotEmpty(t, arch)
	}

	for _, input := range []string{"", "mips", "riscv64", "amd64"} {
		_, err := ParseArchitecture(input)
		require.ErrorIs(t, err, ErrUnsupportedArchitecture, "input %q", input)
	}
}

// TestArtifactURL checks the full artifact path template.
func TestArtifactURL(t *testing.T) {
	t.Parallel()

	candidate := release.Candidate{
		Version: release.Tuple{Major: 1, Minor: 42, Patch: 1, Build: 10060},
		BuildID: "4e8b05daf",
	}

	require.Equal(t,
		"PlexMediaServer-1.42.1.10060-4e8b05daf-x86_64_DSM72.spk",
		ArtifactFilename(candidate, ArchX8664))

	got, err := ArtifactURL("https://downloads.example/pms/", candidate, ArchAArch64)
	require.NoError(t, err)
	require.Equal(t,
		"https://downloads.example/pms/1.42.1.10060-4e8b05daf/synology-dsm72/PlexMediaServer-1.42.1.10060-4e8b05daf-aarch64_DSM72.spk",
		got)
}

// TestReadInstalledState covers the INFO key-value format, the missing-file
// sentinel, and degradation on malformed version values.
func TestReadInstalledState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	writeInfo := func(contents string) string {
		path := filepath.Join(dir, "INFO")
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

		return path
	}

	// Regular installed package.
	path := writeInfo("package=\"PlexMediaServer\"\nversion=\"1.42.1.10060-4e8b05daf\"\narch=\"x86_64\"\n")

	state, err := ReadInstalledState(ctx, path)
	require.NoError(t, err)
	require.Equal(t, release.Tuple{Major: 1, Minor: 42, Patch: 1, Build: 10060}, state.Version)
	require.Equal(t, "4e8b05daf", state.BuildID)
	require.True(t, state.Installed())

	// Missing file means not installed, not an error.
	state, err = ReadInstalledState(ctx, filepath.Join(dir, "absent"))
	require.NoError(t, err)
	require.Equal(t, release.NotInstalled, state)
	require.False(t, state.Installed())

	// Malformed version degrades instead of failing.
	path = writeInfo("version=\"1.42.x.10060-4e8b05daf\"\n")

	state, err = ReadInstalledState(ctx, path)
	require.NoError(t, err)
	require.Equal(t, release.Tuple{Major: 1, Minor: 42, Patch: 0, Build: 10060}, state.Version)
	require.Equal(t, "4e8b05daf", state.BuildID)

	// No version key falls back to the sentinel.
	path = writeInfo("package=\"PlexMediaServer\"\n")

	state, err = ReadInstalledState(ctx, path)
	require.NoError(t, err)
	require.Equal(t, release.NotInstalled, state)
}
