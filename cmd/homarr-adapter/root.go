package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/halos-dev/homarr-adapter/internal/app"
	"github.com/halos-dev/homarr-adapter/internal/config"
	"github.com/halos-dev/homarr-adapter/internal/core"
	"github.com/halos-dev/homarr-adapter/internal/logger"
)

// Exit codes: the scheduler distinguishes a clean pass from a pass with
// per-item failures and from a fatal one.
const (
	exitFatal   = 1
	exitPartial = 2
)

type contextKey string

const configKey = contextKey("config")

var rootCmd = &cobra.Command{
	Use:           "homarr-adapter",
	Short:         "Reconcile Docker containers with a Homarr dashboard",
	Long:          "An adapter that performs one-time Homarr first-boot setup and keeps the dashboard's tile set in sync with labeled Docker containers.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		if err := config.InitConfig(configPath); err != nil {
			return err
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		ctx := context.WithValue(cmd.Context(), configKey, cfg)
		cmd.SetContext(ctx)
		return nil
	},
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Run first-boot setup",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer application.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return application.Setup(ctx)
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a single sync cycle (for systemd timer)",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer application.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		result, runErr := application.Sync(ctx)
		fmt.Printf("Sync: %d created, %d skipped, %d failed\n", result.Created, result.Skipped, result.Failed)
		return runErr
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the adapter's persisted state",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer application.Close()

		fmt.Print(application.Status().String())
		return nil
	},
}

func newApp(cmd *cobra.Command) (*app.App, error) {
	cfg := cmd.Context().Value(configKey).(*config.Config)
	logInstance := logger.SetupLogger(&cfg.Logging)
	application, err := app.New(cfg, logInstance)
	if err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}
	return application, nil
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default is /etc/homarr-adapter/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "INFO", "set log level (e.g. INFO, DEBUG, WARN)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(setupCmd, syncCmd, statusCmd)
}

// Execute runs the root command and maps errors to process exit codes.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var partial *core.PartialSyncError
		if errors.As(err, &partial) {
			os.Exit(exitPartial)
		}
		os.Exit(exitFatal)
	}
}
