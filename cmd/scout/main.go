// Command scout scores players against role archetypes and serves the
// resulting shortlists and comparables.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rberkkaratas/recruitment-support/internal/config"
	"github.com/rberkkaratas/recruitment-support/pkg/logger"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "scout",
	Short:         "Role-based player scoring, comparables and shortlists",
	Long:          "Computes scope-aware percentiles from a season metric table, scores players against positional roles, and builds comparables and shortlists per role.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.Load(cmd.Context(), configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		if err := logger.SetLevelString(cfg.LogLevel); err != nil {
			logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
				logger.String("log_level", cfg.LogLevel), logger.Error(err))
			_ = logger.SetLevelString("info")
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

func init() { //nolint:gochecknoinits // cobra command wiring
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	rootCmd.AddCommand(runCmd, serveCmd, scopesCmd, rolesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "scout:", err)
		os.Exit(1)
	}
}
