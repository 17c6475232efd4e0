package updater

import (
	"context"
	"crypto"
	"errors"
	"os"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/synoplex/plex-updater/internal/logger"

	// Ensure SHA1 is available for artifact checksum verification;
	// it is the digest the downloads API publishes.
	_ "crypto/sha1"
)

const (
	// MarkerFilename marks that an update run is in progress to avoid
	// parallel execution. The run is non-reentrant by design.
	MarkerFilename = "plex-updater-marker.bin"

	// markerLifetime is the period after which a stale marker is ignored.
	markerLifetime = 30 * time.Minute

	// updaterExecutable is this tool's process name, used when recovering
	// from a stale marker.
	updaterExecutable = "plex-updater"

	// artifactChecksumFunction verifies downloaded packages against the
	// checksum published by the downloads API.
	artifactChecksumFunction crypto.Hash = crypto.SHA1

	// artifactFileMode is the permission for the staged package file.
	artifactFileMode os.FileMode = 0o644

	// downloadTimeout bounds the whole package download. Separate from the
	// resolution timeout: the artifact is hundreds of megabytes.
	downloadTimeout = 30 * time.Minute
)

// IsRunningNow checks presence of a marker file and attempts recovery if it looks stale.
func IsRunningNow(ctx context.Context) bool {
	logger.Debug(ctx, "Checking for the presence of an update marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The update marker is too old, attempting cleanup")

		if err = terminateProcessByName(updaterExecutable); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read update marker: %v", err)

	return false
}

// terminateProcessByName tries to kill other processes with the provided executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
