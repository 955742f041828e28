package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/journal"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	c := &cobra.Command{
		Use:   "history",
		Short: "Show recent booking attempts from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg   config.Config
				store journal.Store
			)
			stop, err := startApp(cmd.Context(), fx.Populate(&cfg, &store))
			if err != nil {
				return err
			}
			defer stop()

			if cfg.DatabaseURL == "" {
				return errors.New("DATABASE_URL is not set, the journal is disabled")
			}
			attempts, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "AT\tLESSON\tTYPE\tSTART\tOUTCOME\tATTEMPTS\tDETAIL")
			for _, a := range attempts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
					a.At.In(loc).Format("2006-01-02 15:04:05"),
					a.LessonID,
					a.LessonType,
					a.LessonStart.In(loc).Format("Mon 01-02 15:04"),
					a.Outcome,
					a.Attempts,
					a.Detail,
				)
			}
			return tw.Flush()
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "number of attempts to show")
	return c
}
