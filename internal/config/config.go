package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds endpoints and tuning parameters for an update run.
type Config struct {
	// TagReleasesURL is the structured release-metadata API queried first.
	TagReleasesURL string `yaml:"tag_releases_url"`
	// DownloadsURL is the JSON downloads API queried second.
	DownloadsURL string `yaml:"downloads_url"`
	// DownloadPageURL is the public download page scraped third.
	DownloadPageURL string `yaml:"download_page_url"`
	// ArtifactBaseURL is the host serving the actual package artifacts.
	ArtifactBaseURL string `yaml:"artifact_base_url"`
	// Architecture overrides automatic detection when set.
	Architecture string `yaml:"architecture"`
	// DownloadFolder is where packages are staged before installation.
	// When empty a temporary directory is used.
	DownloadFolder string `yaml:"download_folder"`
	// Timeout bounds every individual HTTP call made during resolution.
	Timeout time.Duration `yaml:"timeout"`
	// ProbeHashes is the best-effort build-hash guess list for the last
	// resolution fallback. It has no authoritative source and goes stale;
	// override it here when upstream rotates hashes.
	ProbeHashes []string `yaml:"probe_hashes"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "plex-updater.yaml"

	// DefaultTimeout is the default bound for a single network call.
	DefaultTimeout = 10 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	defaultTagReleasesURL  = "https://api.github.com/repos/plexinc/pms-docker/releases/latest"
	defaultDownloadsURL    = "https://plex.tv/api/downloads/5.json"
	defaultDownloadPageURL = "https://www.plex.tv/media-server-downloads/"
	defaultArtifactBaseURL = "https://downloads.plex.tv/plex-media-server-new"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
)

// defaultProbeHashes seeds ProbeHashes when the config does not set any.
// These are known recent build hashes; the probe source treats them as
// guesses to verify, never as facts.
func defaultProbeHashes() []string {
	return []string{
		"4e8b05daf",
		"f2c27da23",
		"8e1e6ea2b",
		"9e65b2f59",
	}
}

// Default returns a configuration pointing at the public upstream endpoints.
func Default() *Config {
	return &Config{
		TagReleasesURL:  defaultTagReleasesURL,
		DownloadsURL:    defaultDownloadsURL,
		DownloadPageURL: defaultDownloadPageURL,
		ArtifactBaseURL: defaultArtifactBaseURL,
		Timeout:         DefaultTimeout,
		ProbeHashes:     defaultProbeHashes(),
	}
}

// Load reads configuration from the provided path and validates essential fields.
// A missing file at the default path is not an error: the tool runs against
// the public endpoints out of the box.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks URL fields, fills defaults for anything left empty,
// and normalizes the timeout.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	defaults := Default()

	if cfg.TagReleasesURL == "" {
		cfg.TagReleasesURL = defaults.TagReleasesURL
	}

	if cfg.DownloadsURL == "" {
		cfg.DownloadsURL = defaults.DownloadsURL
	}

	if cfg.DownloadPageURL == "" {
		cfg.DownloadPageURL = defaults.DownloadPageURL
	}

	if cfg.ArtifactBaseURL == "" {
		cfg.ArtifactBaseURL = defaults.ArtifactBaseURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if len(cfg.ProbeHashes) == 0 {
		cfg.ProbeHashes = defaultProbeHashes()
	}

	for name, value := range map[string]string{
		"tag_releases_url":  cfg.TagReleasesURL,
		"downloads_url":     cfg.DownloadsURL,
		"download_page_url": cfg.DownloadPageURL,
		"artifact_base_url": cfg.ArtifactBaseURL,
	} {
		if _, err := url.ParseRequestURI(value); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	return nil
}
