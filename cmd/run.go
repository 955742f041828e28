package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/scheduler"
	"github.com/example/lessonsched/internal/web"
)

func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the booking scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			stop, err := startApp(ctx,
				forceDryRun(dryRun),
				fx.Invoke(startScheduler, startStatusServer),
			)
			if err != nil {
				return err
			}
			defer stop()

			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log bookings instead of sending them (overrides DRY_RUN)")
	return cmd
}

func startScheduler(lc fx.Lifecycle, s *scheduler.Scheduler, logger *slog.Logger) {
	var (
		cancel context.CancelFunc
		done   = make(chan struct{})
	)
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			go func() {
				defer close(done)
				if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("scheduler stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
				logger.Info("scheduler stopped")
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func startStatusServer(lc fx.Lifecycle, cfg config.Config, s *scheduler.Scheduler, logger *slog.Logger) {
	if cfg.StatusAddr == "" {
		return
	}
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			srv := &web.Server{Status: s, Logger: logger}
			go func() {
				if err := web.Start(ctx, cfg.StatusAddr, srv.Routes(), logger); err != nil {
					logger.Error("status endpoint failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
