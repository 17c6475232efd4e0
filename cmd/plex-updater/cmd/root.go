package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/synoplex/plex-updater/internal/logger"
	"github.com/synoplex/plex-updater/internal/service/updater"
	"github.com/synoplex/plex-updater/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel controls logging verbosity.
	logLevel string

	// buildUpdate enables same-version build-level updates.
	buildUpdate bool

	// rootCmd represents the base command that checks for and installs
	// media server updates.
	rootCmd = &cobra.Command{
		Use:   "plex-updater",
		Short: "Check for and install Plex Media Server updates on Synology DSM",
		Long: "Checks whether a newer Plex Media Server build is published for this NAS, " +
			"and if so downloads the package and installs it, replacing the running instance. " +
			"Exits zero on success or when no update is needed.",
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &updater.Options{
				ConfigPath:  configPath,
				BuildUpdate: buildUpdate,
			}

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the plex-updater CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&buildUpdate, "build-update", "b", false,
		"also update when only the build identifier of the same version changed")
}
