package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"btclassic/internal/app"
	"btclassic/internal/bluez"
	"btclassic/internal/config"
	"btclassic/pkg/logging"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	adapter    string
	logLevel   string
}

var opts rootOptions

// newBackend is replaced in tests.
var newBackend = func(cfg config.Config) app.Backend {
	return bluez.New(bluez.Options{Adapter: cfg.Adapter})
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "btclassic",
		Short: "Select and track a Bluetooth Classic serial device",
		Long: `btclassic watches the local Bluetooth adapter, lists nearby Serial Port
Profile devices and keeps exactly one of them selected. Turning the
adapter off drops the selection.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default layers ~/.config/btclassic/config.yaml and ./.btclassic/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.adapter, "adapter", "", "BlueZ adapter name, e.g. hci0 (default: first adapter)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug|info|warn|error")

	cmd.AddCommand(newUICmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command with a context canceled on SIGINT/SIGTERM.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "btclassic version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// loadConfig layers the config files and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.adapter != "" {
		cfg.Adapter = opts.adapter
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return cfg, nil
}

// setupCLI loads config and initializes CLI logging to w.
func setupCLI(w io.Writer) (config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return config.Config{}, err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid log level: %w", err)
	}
	logging.InitForCLI(level, w)
	return cfg, nil
}
