package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/example/lessonsched/internal/auth"
	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/db"
	"github.com/example/lessonsched/internal/journal"
	"github.com/example/lessonsched/internal/lesson"
	"github.com/example/lessonsched/internal/logging"
	"github.com/example/lessonsched/internal/matcher"
	"github.com/example/lessonsched/internal/migrate"
	"github.com/example/lessonsched/internal/notify"
	"github.com/example/lessonsched/internal/pkg/clock"
	"github.com/example/lessonsched/internal/pkg/errs"
	"github.com/example/lessonsched/internal/retry"
	"github.com/example/lessonsched/internal/scheduler"
	"github.com/example/lessonsched/internal/sportivity"
)

// logOutput is where every command logs. Command output goes to stdout.
var logOutput io.Writer = os.Stderr

// appFs backs the targets file, the token store and the log file.
var appFs = afero.NewOsFs()

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		provideLocation,
		provideTargets,
	),
)

var LoggerModule = fx.Module("logger",
	fx.Provide(
		provideLogger,
	),
)

var AuthModule = fx.Module("auth",
	fx.Provide(
		provideTokenManager,
	),
)

var RemoteModule = fx.Module("sportivity",
	fx.Provide(
		provideRemote,
	),
)

var NotifyModule = fx.Module("notify",
	fx.Provide(
		provideNotifier,
	),
)

var JournalModule = fx.Module("journal",
	fx.Provide(
		provideJournal,
	),
)

var SchedulerModule = fx.Module("scheduler",
	fx.Provide(
		provideWindow,
		provideMatcher,
		provideTracker,
		provideScheduler,
	),
)

var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	AuthModule,
	RemoteModule,
	NotifyModule,
	JournalModule,
	SchedulerModule,
	fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
		fl := &fxevent.SlogLogger{Logger: l}
		fl.UseLogLevel(slog.LevelDebug)
		return fl
	}),
)

// startApp builds the application and starts its lifecycle. The returned
// stop function must be called once the command is done.
func startApp(ctx context.Context, opts ...fx.Option) (func(), error) {
	app := fx.New(append([]fx.Option{Module}, opts...)...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, err
	}
	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}, nil
}

// forceDryRun turns booking into a no-op for this invocation only.
func forceDryRun(enabled bool) fx.Option {
	if !enabled {
		return fx.Options()
	}
	return fx.Decorate(func(cfg config.Config) config.Config {
		cfg.Sportivity.DryRun = true
		return cfg
	})
}

func provideLocation(cfg config.Config) (*time.Location, error) {
	return cfg.Location()
}

func provideTargets(cfg config.Config) (config.Targets, error) {
	return config.LoadTargets(appFs, cfg.TargetsFile)
}

func provideLogger(lc fx.Lifecycle, cfg config.Config, loc *time.Location) (*slog.Logger, error) {
	logger, closeFn, err := logging.NewLogger(appFs, cfg.Log, loc, logOutput)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closeFn()
		},
	})
	return logger, nil
}

func provideTokenManager(cfg config.Config, logger *slog.Logger) (*auth.Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	secret, err := auth.NewSecretSource(cfg.Store).Secret()
	if err != nil {
		return nil, errs.Wrap(err, "token secret (set TOKEN_KEY when no keyring is available)")
	}
	store, err := auth.NewFileStore(appFs, cfg.Store.TokenFile, secret)
	if err != nil {
		return nil, err
	}
	// The login client carries no token source; it only calls Login.
	login := sportivity.New(cfg.Sportivity, nil, logger)
	creds := auth.Credentials{Username: cfg.Sportivity.Username, Password: cfg.Sportivity.Password}
	return auth.NewManager(login, store, creds, clock.NewRealClock(), logger), nil
}

func provideRemote(cfg config.Config, tokens *auth.Manager, logger *slog.Logger) *sportivity.Client {
	return sportivity.New(cfg.Sportivity, tokens, logger)
}

func provideNotifier(cfg config.Config, loc *time.Location, logger *slog.Logger) *notify.Dispatcher {
	d := notify.FromConfig(cfg.Notify, loc, logger)
	if !d.Enabled() {
		logger.Info("notifications disabled")
	} else {
		logger.Info("notifications enabled", "backends", d.Senders())
	}
	return d
}

func provideJournal(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (journal.Store, error) {
	if cfg.DatabaseURL == "" {
		return journal.Nop{}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := migrate.Up(ctx, d, logger); err != nil {
		d.Close()
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			d.Close()
			return nil
		},
	})
	return journal.NewRepo(d), nil
}

func provideWindow(cfg config.Config) (lesson.Window, error) {
	w := lesson.Window{
		OpenHours:          cfg.Booking.WindowHours,
		BufferMinutes:      cfg.Booking.BufferMinutes,
		AggressiveEndHours: cfg.Booking.WindowEndHours,
	}
	return w, w.Validate()
}

func provideMatcher(targets config.Targets, loc *time.Location, logger *slog.Logger) *matcher.Matcher {
	return matcher.New(targets.MatcherConfig(), loc, logger)
}

func provideTracker(cfg config.Config, w lesson.Window, loc *time.Location, logger *slog.Logger) *retry.Tracker {
	return retry.NewTracker(retry.Policy{
		MaxDailyRetries: cfg.Booking.MaxDailyRetries,
		RetryHours:      cfg.Booking.RetryHours,
		Interval:        cfg.Booking.RetryInterval,
		Window:          w,
		Location:        loc,
	}, logger)
}

type schedulerParams struct {
	fx.In

	Config   config.Config
	Remote   *sportivity.Client
	Notifier *notify.Dispatcher
	Journal  journal.Store
	Matcher  *matcher.Matcher
	Window   lesson.Window
	Tracker  *retry.Tracker
	Logger   *slog.Logger
}

func provideScheduler(p schedulerParams) *scheduler.Scheduler {
	b := p.Config.Booking
	return scheduler.New(scheduler.Config{
		Remote:   p.Remote,
		Notifier: p.Notifier,
		Journal:  p.Journal,
		Matcher:  p.Matcher,
		Window:   p.Window,
		Tracker:  p.Tracker,
		Clock:    clock.NewRealClock(),
		Logger:   p.Logger,
		Intervals: scheduler.Intervals{
			Retry:     b.RetryInterval,
			Poll:      b.CheckInterval,
			Recovery:  b.RecoveryInterval,
			Pause:     b.BookingPause,
			Lookahead: time.Duration(b.LookaheadDays) * 24 * time.Hour,
		},
	})
}
