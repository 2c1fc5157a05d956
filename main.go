package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmsadmin/pkg/config"
	"cmsadmin/pkg/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cmsadmin",
	Short: "Admin panel for the CMS backend",
	Long: `cmsadmin manages the content records and notes of the CMS backend.

Run "cmsadmin serve" for the web admin panel, or use the listing and export
commands against the backend directly.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.GetConfigFilePath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}

		level := cfg.LogLevel
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Development)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		if cfg.GeneratedSecret {
			logger.Warn("no session secret configured, using a random one; sessions will not survive a restart")
		}
		logger.Debug("configuration loaded", zap.String("file", path), zap.Stringer("config", cfg))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (JSON or YAML; default: CMS_CONFIG or ./config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(contentCmd)
	rootCmd.AddCommand(notesCmd)
	rootCmd.AddCommand(contentTypesCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
