// Package notify tells the operator about booking outcomes over email,
// Telegram and the desktop notification bus.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/lesson"
)

const (
	// stillTryingThreshold is the attempt count from which retries are reported.
	stillTryingThreshold = 2
	// sendTimeout bounds each backend so a stalled one cannot hold up booking.
	sendTimeout = 30 * time.Second
)

type Message struct {
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans a notification out to every configured sender. Sender
// failures are logged and otherwise ignored.
type Dispatcher struct {
	senders []Sender
	loc     *time.Location
	logger  *slog.Logger
	timeout time.Duration
}

func NewDispatcher(loc *time.Location, logger *slog.Logger, senders ...Sender) *Dispatcher {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{senders: senders, loc: loc, logger: logger, timeout: sendTimeout}
}

// FromConfig enables every backend cfg has enough settings for.
func FromConfig(cfg config.NotifyConfig, loc *time.Location, logger *slog.Logger) *Dispatcher {
	var senders []Sender
	if cfg.EnableEmail {
		if cfg.EmailFrom == "" || cfg.EmailTo == "" {
			logger.Warn("email not configured, set EMAIL_FROM and EMAIL_TO")
		} else {
			senders = append(senders, NewEmailSender(cfg))
		}
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID != 0 {
		senders = append(senders, NewTelegramSender(cfg.TelegramToken, cfg.TelegramChatID))
	}
	if cfg.Desktop {
		senders = append(senders, NewDesktopSender())
	}
	return NewDispatcher(loc, logger, senders...)
}

func (d *Dispatcher) Enabled() bool { return len(d.senders) > 0 }

func (d *Dispatcher) Senders() []string {
	names := make([]string, 0, len(d.senders))
	for _, s := range d.senders {
		names = append(names, s.Name())
	}
	return names
}

func (d *Dispatcher) NotifySuccess(ctx context.Context, l lesson.Lesson) {
	msg, err := successMessage(l, d.loc)
	if err != nil {
		d.logger.Error("failed to render booking confirmation", "error", err)
		return
	}
	d.dispatch(ctx, msg)
}

func (d *Dispatcher) NotifyStillTrying(ctx context.Context, l lesson.Lesson, attempts int) {
	if attempts < stillTryingThreshold {
		return
	}
	msg, err := stillTryingMessage(l, attempts, d.loc)
	if err != nil {
		d.logger.Error("failed to render retry notification", "error", err)
		return
	}
	d.dispatch(ctx, msg)
}

func (d *Dispatcher) dispatch(ctx context.Context, msg Message) {
	for _, s := range d.senders {
		if err := d.send(ctx, s, msg); err != nil {
			d.logger.Error("failed to send notification", "backend", s.Name(), "subject", msg.Subject, "error", err)
			continue
		}
		d.logger.Info("notification sent", "backend", s.Name(), "subject", msg.Subject)
	}
}

func (d *Dispatcher) send(ctx context.Context, s Sender, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return s.Send(ctx, msg)
}
