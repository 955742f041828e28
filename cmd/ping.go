package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/example/lessonsched/internal/sportivity"
)

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the platform accepts our credentials and returns listings",
		RunE: func(cmd *cobra.Command, args []string) error {
			var remote *sportivity.Client
			stop, err := startApp(cmd.Context(), fx.Populate(&remote))
			if err != nil {
				return err
			}
			defer stop()

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			now := time.Now()
			records, err := remote.Listings(ctx, now, now.Add(24*time.Hour))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sportivity: ok (%d lessons in the next 24h)\n", len(records))
			return nil
		},
	}
}
