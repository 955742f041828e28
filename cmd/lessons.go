package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/lesson"
	"github.com/example/lessonsched/internal/matcher"
	"github.com/example/lessonsched/internal/sportivity"
)

func newLessonsCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "lessons",
		Short: "List upcoming lessons that match the configured targets",
		Long: "Fetches the lesson schedule and prints every lesson the scheduler would book,\n" +
			"with the time its booking window opens. --offline only prints the target rules.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if offline {
				var targets config.Targets
				stop, err := startApp(cmd.Context(), fx.Populate(&targets))
				if err != nil {
					return err
				}
				defer stop()
				return printTargets(cmd.OutOrStdout(), targets)
			}

			var (
				cfg    config.Config
				remote *sportivity.Client
				m      *matcher.Matcher
				w      lesson.Window
			)
			stop, err := startApp(cmd.Context(), fx.Populate(&cfg, &remote, &m, &w))
			if err != nil {
				return err
			}
			defer stop()

			now := time.Now()
			lookahead := time.Duration(cfg.Booking.LookaheadDays) * 24 * time.Hour
			records, err := remote.Listings(cmd.Context(), now, now.Add(lookahead))
			if err != nil {
				return err
			}
			matched := m.Filter(now, records, matcher.NewIDSet())
			return printLessons(cmd.OutOrStdout(), matched, w, now)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "print the target rules without contacting the platform")
	return cmd
}

var weekdays = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

func printTargets(out io.Writer, t config.Targets) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEKDAY\tTIME\tTYPE")
	for _, r := range t.Lessons {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", weekdays[r.Weekday], r.Time, r.Type)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if t.ToleranceMinutes > 0 {
		fmt.Fprintf(out, "\ntime tolerance: %d minutes\n", t.ToleranceMinutes)
	}
	return nil
}

func printLessons(out io.Writer, lessons []lesson.Lesson, w lesson.Window, now time.Time) error {
	if len(lessons) == 0 {
		fmt.Fprintln(out, "no matching lessons in the lookahead window")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTART\tTYPE\tINSTRUCTOR\tSPOTS\tOPENS\tSTATE")
	for _, l := range lessons {
		state := "waiting"
		switch {
		case w.Aggressive(l, now):
			state = "aggressive"
		case w.Bookable(l, now):
			state = "open"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			l.ID,
			l.Start.Format("Mon 2006-01-02 15:04"),
			l.TypeName,
			l.Instructor,
			l.AvailableSpots,
			w.OpensAt(l).Format("Mon 15:04"),
			state,
		)
	}
	return tw.Flush()
}
