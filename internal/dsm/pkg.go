package dsm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/logger"
)

// PackageManager is the OS collaborator the update run drives: it reads the
// installed state, stops and starts the media server service, and installs
// a downloaded package. The core logic never shells out directly, so tests
// substitute a fake.
type PackageManager interface {
	Installed(ctx context.Context) (release.InstalledState, error)
	Stop(ctx context.Context) error
	Start(ctx context.Context) error
	Install(ctx context.Context, packagePath string) error
}

// ErrRootRequired is returned when the process lacks the privileges
// package operations need.
var ErrRootRequired = errors.New("root privileges required")

// synopkgTimeout bounds individual synopkg invocations. Package
// installation can legitimately take a while on slow ARM boxes.
const synopkgTimeout = 5 * time.Minute

// RequireRoot verifies the process runs with root privileges.
// synopkg refuses package operations for unprivileged users anyway;
// failing early gives a clearer message.
func RequireRoot() error {
	if os.Geteuid() != 0 {
		return ErrRootRequired
	}

	return nil
}

// SynoPackageManager drives the DSM `synopkg` tool.
type SynoPackageManager struct {
	// infoPath is the package INFO file location, overridable for tests.
	infoPath string
}

// NewSynoPackageManager returns a manager reading metadata from infoPath,
// or from the standard DSM location when empty.
func NewSynoPackageManager(infoPath string) *SynoPackageManager {
	if infoPath == "" {
		infoPath = DefaultInfoPath
	}

	return &SynoPackageManager{infoPath: infoPath}
}

// Installed reads the installed state from the package INFO file.
func (m *SynoPackageManager) Installed(ctx context.Context) (release.InstalledState, error) {
	return ReadInstalledState(ctx, m.infoPath)
}

// Stop stops the media server service.
func (m *SynoPackageManager) Stop(ctx context.Context) error {
	return m.run(ctx, "stop", PackageName)
}

// Start starts the media server service.
func (m *SynoPackageManager) Start(ctx context.Context) error {
	return m.run(ctx, "start", PackageName)
}

// Install installs the package file at packagePath.
func (m *SynoPackageManager) Install(ctx context.Context, packagePath string) error {
	return m.run(ctx, "install", packagePath)
}

// run executes a synopkg subcommand with a bounded timeout.
func (m *SynoPackageManager) run(ctx context.Context, args ...string) error {
	cmdCtx, cancel := context.WithTimeout(ctx, synopkgTimeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "synopkg", args...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("synopkg %s: %w (output: %s)",
			strings.Join(args, " "), err, strings.TrimSpace(string(output)))
	}

	logger.DebugKV(ctx, "synopkg succeeded", "args", strings.Join(args, " "))

	return nil
}
