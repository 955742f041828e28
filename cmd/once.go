package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/example/lessonsched/internal/scheduler"
)

func newOnceCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single booking cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			var s *scheduler.Scheduler
			stop, err := startApp(cmd.Context(), forceDryRun(dryRun), fx.Populate(&s))
			if err != nil {
				return err
			}
			defer stop()

			stats, next := s.Cycle(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "matched=%d checked=%d booked=%d failed=%d\n",
				stats.Matched, stats.Checked, stats.Booked, stats.Failed)
			if st := s.Status(); st.NextWindow != nil {
				fmt.Fprintf(out, "next booking window: %s\n", st.NextWindow.Format("2006-01-02 15:04"))
			}
			fmt.Fprintf(out, "next cycle in: %s\n", next)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log bookings instead of sending them (overrides DRY_RUN)")
	return cmd
}
