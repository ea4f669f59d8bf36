package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"btclassic/internal/adapter"
	"btclassic/pkg/logging"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print whether the Bluetooth adapter is enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setupCLI(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			backend := newBackend(cfg)
			defer backend.Close()

			enabled, err := backend.IsEnabled(cmd.Context())
			if err != nil {
				// Same degradation as the monitor: unknown means disabled.
				if errors.Is(err, adapter.ErrUnavailable) {
					logging.WarnErr("status", err, "Bluetooth capability unavailable")
				} else {
					logging.WarnErr("status", err, "Adapter status probe failed")
				}
				enabled = false
			}
			fmt.Fprintf(cmd.OutOrStdout(), "adapter: %s\n", enabledString(enabled))
			return nil
		},
	}
}
