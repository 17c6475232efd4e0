package updater

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/synoplex/plex-updater/internal/config"
	"github.com/synoplex/plex-updater/internal/domain/release"
	"github.com/synoplex/plex-updater/internal/dsm"
	"github.com/synoplex/plex-updater/internal/logger"
	"github.com/synoplex/plex-updater/internal/resolver"
)

var (
	errAlreadyRunning = errors.New("an update run is already in progress")
	errBadHTTPStatus  = errors.New("unexpected http status")
	errEmptyDownload  = errors.New("downloaded package is empty")
	errInstallFailed  = errors.New("install failed")
)

// Options are inputs accepted by the updater entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// BuildUpdate enables updating to a different build of the same
	// version, which is skipped by default.
	BuildUpdate bool
}

// runner holds the state and collaborators for a single update run.
// It is intentionally unexported; call Run(ctx, Options) from callers.
type runner struct {
	cfg         *config.Config     // Settings loaded from YAML (or defaults).
	pkg         dsm.PackageManager // OS collaborator for stop/start/install.
	res         *resolver.Resolver // Upstream source chain.
	arch        dsm.Architecture   // Validated target architecture.
	buildUpdate bool               // Whether same-version build changes update.
	downloadDir string             // Where the package is staged.
	ownsTempDir bool               // Whether cleanup removes downloadDir.
}

// Run executes one update pass and is the public entry point for the CLI.
// It requires root because package installation does.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "plex-updater")

	if err := dsm.RequireRoot(); err != nil {
		return err
	}

	return run(ctx, opts, dsm.NewSynoPackageManager(""))
}

// RunWithPackageManager executes one update pass against the provided
// package manager. The caller is responsible for privilege checks; this is
// the seam integration tests use.
func RunWithPackageManager(ctx context.Context, opts *Options, pkg dsm.PackageManager) error {
	ctx = logger.WithName(ctx, "plex-updater")

	return run(ctx, opts, pkg)
}

// run takes the marker-file mutex and drives one update pass. The cleanup
// defer is installed right after the marker exists, so a failure anywhere
// in setup still releases the mutex; only another run's live marker is
// left untouched.
func run(ctx context.Context, opts *Options, pkg dsm.PackageManager) error {
	if IsRunningNow(ctx) {
		return errAlreadyRunning
	}

	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return err
	}

	if err = marker.Close(); err != nil {
		return err
	}

	u := &runner{
		pkg:         pkg,
		buildUpdate: opts.BuildUpdate,
	}

	defer u.cleanup(ctx)

	if err = u.setup(opts); err != nil {
		return err
	}

	if err = u.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Update run completed")

	return nil
}

// setup loads the configuration and validates the architecture before any
// network activity.
func (u *runner) setup(opts *Options) error {
	var err error

	if u.cfg, err = config.Load(opts.ConfigPath); err != nil {
		return err
	}

	if u.arch, err = resolveArchitecture(u.cfg); err != nil {
		return err
	}

	u.res = resolver.New(u.cfg)

	return u.prepareDownloadDir()
}

// resolveArchitecture applies the config override or detects the platform.
// Unsupported architectures abort the run here, before any network call.
func resolveArchitecture(cfg *config.Config) (dsm.Architecture, error) {
	if cfg.Architecture != "" {
		return dsm.ParseArchitecture(cfg.Architecture)
	}

	return dsm.DetectArchitecture()
}

func (u *runner) prepareDownloadDir() error {
	if u.cfg.DownloadFolder != "" {
		u.downloadDir = u.cfg.DownloadFolder

		return os.MkdirAll(u.downloadDir, 0o755)
	}

	dir, err := os.MkdirTemp("", "plex-updater-")
	if err != nil {
		return err
	}

	u.downloadDir = dir
	u.ownsTempDir = true

	return nil
}

// Run executes the update workflow for this runner instance:
// 1) Read the installed state.
// 2) Resolve the latest published release through the source chain.
// 3) Decide whether an update is warranted.
// 4) Download and verify the package.
// 5) Stop the service, install, and restart.
func (u *runner) Run(ctx context.Context) error {
	installed, err := u.pkg.Installed(ctx)
	if err != nil {
		return fmt.Errorf("read installed state: %w", err)
	}

	logger.InfoKV(ctx, "Installed state", "release", installed.Release(), "arch", string(u.arch))

	latest, err := u.res.Resolve(ctx, installed, u.arch)
	if err != nil {
		return fmt.Errorf("resolve latest release: %w", err)
	}

	decision := release.Decide(installed, latest, u.buildUpdate)

	logger.InfoKV(ctx, "Update decision",
		"outcome", string(decision.Outcome), "reason", decision.Reason)

	if !decision.Actionable() {
		if decision.Outcome == release.LatestOlderThanInstalled {
			logger.WarnKV(ctx, "Resolved release is older than the installed one",
				"source", latest.Source)
		}

		return nil
	}

	packagePath, err := u.downloadPackage(ctx, decision.Target)
	if err != nil {
		return fmt.Errorf("download package: %w", err)
	}

	if err = u.installPackage(ctx, installed, packagePath); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Updated successfully", "release", decision.Target.Release())

	return nil
}

// downloadPackage fetches the artifact, verifies it, and stages it under
// the download directory using an atomic checksum-validated apply.
func (u *runner) downloadPackage(ctx context.Context, target release.Candidate) (string, error) {
	artifactURL, err := dsm.ArtifactURL(u.cfg.ArtifactBaseURL, target, u.arch)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Downloading package", "url", artifactURL)

	downloadCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, artifactURL, http.NoBody)
	if err != nil {
		return "", err
	}

	// The resolution client enforces a short per-call timeout; the package
	// itself is large, so the download relies on the context bound instead.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s, %s: %w", artifactURL, resp.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if len(data) == 0 {
		return "", errEmptyDownload
	}

	return u.stagePackage(ctx, target, data)
}

// stagePackage writes the package bytes to their final staging path.
// When the downloads API published a checksum, the write is refused on
// mismatch; otherwise the artifact is accepted as-is.
func (u *runner) stagePackage(ctx context.Context, target release.Candidate, data []byte) (string, error) {
	packagePath := filepath.Join(u.downloadDir, dsm.ArtifactFilename(target, u.arch))

	options := goupdate.Options{
		TargetPath: packagePath,
		TargetMode: artifactFileMode,
		Hash:       artifactChecksumFunction,
	}

	if target.ChecksumSHA1 != "" {
		checksum, err := hex.DecodeString(target.ChecksumSHA1)
		if err != nil {
			return "", fmt.Errorf("decode published checksum: %w", err)
		}

		options.Checksum = checksum

		logger.DebugKV(ctx, "Verifying package against published checksum",
			"sha1", target.ChecksumSHA1)
	} else {
		logger.Debug(ctx, "No published checksum for this artifact, staging unverified")
	}

	// The staging target does not exist yet; go-update requires a file to
	// replace, so create an empty one first.
	if _, err := os.Stat(packagePath); err != nil && os.IsNotExist(err) {
		if err = os.WriteFile(packagePath, nil, artifactFileMode); err != nil {
			return "", err
		}
	}

	if err := goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return "", fmt.Errorf("stage package: %w", err)
	}

	oldPath := packagePath + ".old"
	if _, err := os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	logger.InfoKV(ctx, "Package staged", "path", packagePath)

	return packagePath, nil
}

// installPackage stops the running instance, installs the staged package,
// and restarts. On install failure it makes a best-effort attempt to bring
// the previous instance back up before reporting the error; this is a
// compensating action, not a rollback.
func (u *runner) installPackage(ctx context.Context, installed release.InstalledState, packagePath string) error {
	if installed.Installed() {
		logger.Info(ctx, "Stopping the running media server")

		if err := u.pkg.Stop(ctx); err != nil {
			logger.WarnKV(ctx, "Stop failed, attempting install anyway", "error", err)
		}
	}

	logger.InfoKV(ctx, "Installing package", "path", packagePath)

	if err := u.pkg.Install(ctx, packagePath); err != nil {
		if installed.Installed() {
			logger.Warn(ctx, "Install failed, restarting the previous instance")

			if startErr := u.pkg.Start(ctx); startErr != nil {
				logger.ErrorKV(ctx, "Restart of previous instance failed", "error", startErr)
			}
		}

		return fmt.Errorf("%w: %w", errInstallFailed, err)
	}

	logger.Info(ctx, "Starting the media server")

	if err := u.pkg.Start(ctx); err != nil {
		return fmt.Errorf("start after install: %w", err)
	}

	return nil
}

// cleanup removes the temporary download directory and the running marker.
func (u *runner) cleanup(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)
	}

	if u.ownsTempDir && u.downloadDir != "" {
		if _, err := os.Stat(u.downloadDir); err == nil {
			_ = os.RemoveAll(u.downloadDir)
		}
	}

	logger.Debug(ctx, "The updater has been stopped")
}
