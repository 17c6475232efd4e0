package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVersionStrings checks Full embeds the short version and names the tool.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), "plex-updater")
}
