package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/tzpack/internal/config"
	"github.com/oshokin/tzpack/internal/service/updater"
	"github.com/oshokin/tzpack/internal/version"
)

var (
	// options collects the flag values passed to the packaging run.
	options = &updater.Options{}

	// rootCmd represents the base command packaging an IANA release.
	rootCmd = &cobra.Command{
		Use:   "tzpack",
		Short: "Package the IANA time zone database",
		Long: "Download or copy an IANA tzdb release, compile it and regenerate the zone table, " +
			"the version marker and the manifest version. Releases that are not newer than the " +
			"packaged one are skipped.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("source-dir") && !cmd.Flags().Changed("version") {
				return updater.ErrSourceDirWithoutVersion
			}

			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return updater.Run(ctx, options)
		},
	}
)

// Execute runs the tzpack CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()

	flags.StringVarP(&options.ConfigPath, "config", "c", "",
		"path to configuration file (default "+config.DefaultConfigFilename+" if present)")
	flags.StringVarP(&options.Version, "version", "v", "", "IANA release to package, e.g. 2024b (default: latest)")
	flags.StringVarP(&options.SourceDir, "source-dir", "s", "",
		"directory with tzdata<version>.tar.gz and tzcode<version>.tar.gz (requires --version)")
	flags.StringVar(&options.WorkDir, "work-dir", "", "staging directory override")
	flags.StringVar(&options.Format, "format", "", "zone table format override: rust or go")
	flags.StringVar(&options.LogLevel, "log-level", "", "log level override: debug, info, warn or error")
}
