package updater

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestIsRunningNow covers the marker-file mutual exclusion: a fresh marker
// blocks a second run, a stale one is cleaned up, and no marker means go.
func TestIsRunningNow(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	ctx := context.Background()

	require.False(t, IsRunningNow(ctx))

	require.NoError(t, os.WriteFile(MarkerFilename, nil, 0o600))
	require.True(t, IsRunningNow(ctx))

	// Age the marker past its lifetime; it should be recovered.
	stale := time.Now().Add(-2 * markerLifetime)
	require.NoError(t, os.Chtimes(MarkerFilename, stale, stale))
	require.False(t, IsRunningNow(ctx))

	_, err := os.Stat(MarkerFilename)
	require.True(t, os.IsNotExist(err))
}
