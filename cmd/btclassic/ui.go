package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"btclassic/internal/app"
	"btclassic/internal/tui"
	"btclassic/pkg/logging"
)

func newUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive device selection (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context())
		},
	}
}

func runUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logs := logging.InitForTUI(level)
	defer logging.CloseTUIChannel()

	a := app.New(cfg, newBackend(cfg))
	model := tui.New(tui.Deps{
		Router:  a.Router,
		Session: a.Session,
		Scan:    a.Scan,
		Logs:    logs,
	})
	defer model.Close()

	if err := a.Start(ctx); err != nil {
		return err
	}
	_, runErr := tui.NewProgram(model).Run()
	if err := a.Stop(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}
