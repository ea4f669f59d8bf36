package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"btclassic/internal/app"
)

func newScanCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List nearby SPP devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setupCLI(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if timeout > 0 {
				cfg.ScanTimeout = timeout
			}
			backend := newBackend(cfg)
			defer backend.Close()

			devs, err := app.New(cfg, backend).Scan(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(devs) == 0 {
				fmt.Fprintln(out, "no SPP devices found")
				return nil
			}
			for i, d := range devs {
				fmt.Fprintf(out, "[%d] ID=%s Address=%s Name=%s Alias=%s\n", i, d.ID, d.Address, d.Name, d.Alias)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "scan duration (default: scanTimeout from config)")
	return cmd
}
