package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"btclassic/internal/app"
	"btclassic/internal/router"
	"btclassic/internal/session"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print adapter and view changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setupCLI(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a := app.New(cfg, newBackend(cfg))
			out := cmd.OutOrStdout()

			cancel := a.Session.Subscribe(func(snap session.Snapshot) {
				fmt.Fprintf(out, "adapter=%s view=%s device=%s\n",
					enabledString(snap.Enabled), router.ActiveView(snap), snap.Device)
			})
			defer cancel()

			return a.Run(cmd.Context())
		},
	}
}

func enabledString(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
