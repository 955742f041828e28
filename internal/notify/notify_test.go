package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/lesson"
)

type recordingSender struct {
	name string
	err  error
	got  []Message
}

func (r *recordingSender) Name() string { return r.name }

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.got = append(r.got, msg)
	return r.err
}

func testLesson(t *testing.T) (lesson.Lesson, *time.Location) {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Amsterdam")
	require.NoError(t, err)
	return lesson.Lesson{
		ID:         "L-1",
		TypeName:   "Pilates",
		Start:      time.Date(2025, 11, 4, 20, 0, 0, 0, loc),
		Instructor: "Anna",
		Location:   "Studio 1",
	}, loc
}

func TestDispatcher_Success(t *testing.T) {
	l, loc := testLesson(t)
	failing := &recordingSender{name: "broken", err: errors.New("smtp down")}
	ok := &recordingSender{name: "ok"}
	d := NewDispatcher(loc, nil, failing, ok)

	d.NotifySuccess(context.Background(), l)

	require.Len(t, ok.got, 1, "a failing backend does not stop the others")
	require.Len(t, failing.got, 1)
	msg := ok.got[0]
	assert.Equal(t, "✅ Les geboekt: Pilates", msg.Subject)
	assert.Contains(t, msg.Text, "Datum: Tuesday, November 04, 2025")
	assert.Contains(t, msg.Text, "Tijd: 20:00")
	assert.Contains(t, msg.Text, "Instructeur: Anna")
	assert.Contains(t, msg.HTML, "<strong>Pilates</strong>")
}

func TestDispatcher_StillTryingThreshold(t *testing.T) {
	l, loc := testLesson(t)
	s := &recordingSender{name: "ok"}
	d := NewDispatcher(loc, nil, s)

	d.NotifyStillTrying(context.Background(), l, 1)
	assert.Empty(t, s.got, "first failure is silent")

	d.NotifyStillTrying(context.Background(), l, 2)
	require.Len(t, s.got, 1)
	assert.Equal(t, "⏳ Nog bezig met boeken: Pilates", s.got[0].Subject)
	assert.Contains(t, s.got[0].Text, "Pogingen: 2")
	assert.Empty(t, s.got[0].HTML)
}

func TestDispatcher_HTMLIsEscaped(t *testing.T) {
	l, loc := testLesson(t)
	l.TypeName = "<script>x</script>"
	s := &recordingSender{name: "ok"}
	NewDispatcher(loc, nil, s).NotifySuccess(context.Background(), l)

	require.Len(t, s.got, 1)
	assert.NotContains(t, s.got[0].HTML, "<script>")
}

func TestFromConfig(t *testing.T) {
	cfg := config.NotifyConfig{EnableEmail: true}
	d := FromConfig(cfg, time.UTC, slogDiscard())
	assert.False(t, d.Enabled(), "email without addresses is skipped")

	cfg = config.NotifyConfig{
		EnableEmail:    true,
		EmailFrom:      "bot@example.com",
		EmailTo:        "me@example.com",
		SMTPServer:     "smtp.example.com",
		SMTPPort:       587,
		TelegramToken:  "123:abc",
		TelegramChatID: 42,
		Desktop:        true,
	}
	d = FromConfig(cfg, time.UTC, slogDiscard())
	assert.Equal(t, []string{"email", "telegram", "desktop"}, d.Senders())
}

func TestEmailSender_Compose(t *testing.T) {
	e := NewEmailSender(config.NotifyConfig{
		EmailFrom:  "bot@example.com",
		EmailTo:    "me@example.com, you@example.com",
		SenderName: "Lessonsched",
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
	})
	e.now = func() time.Time { return time.Date(2025, 11, 2, 20, 1, 0, 0, time.UTC) }

	raw, err := e.compose(Message{Subject: "✅ Les geboekt: Yoga", Text: "Les: Yoga", HTML: "<p>Yoga</p>"})
	require.NoError(t, err)

	m, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)

	subject, err := new(mime.WordDecoder).DecodeHeader(m.Header.Get("Subject"))
	require.NoError(t, err)
	assert.Equal(t, "✅ Les geboekt: Yoga", subject)
	assert.Equal(t, "me@example.com, you@example.com", m.Header.Get("To"))
	assert.Equal(t, `"Lessonsched" <bot@example.com>`, m.Header.Get("From"))

	mediaType, params, err := mime.ParseMediaType(m.Header.Get("Content-Type"))
	require.NoError(t, err)
	assert.Equal(t, "multipart/alternative", mediaType)

	mr := multipart.NewReader(m.Body, params["boundary"])
	var types, bodies []string
	for {
		p, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		types = append(types, p.Header.Get("Content-Type"))
		bodies = append(bodies, string(b))
	}
	assert.Equal(t, []string{"text/plain; charset=utf-8", "text/html; charset=utf-8"}, types)
	assert.Equal(t, []string{"Les: Yoga", "<p>Yoga</p>"}, bodies)
}

func TestEmailSender_ComposePlain(t *testing.T) {
	e := NewEmailSender(config.NotifyConfig{EmailFrom: "bot@example.com", EmailTo: "me@example.com"})
	raw, err := e.compose(Message{Subject: "hi", Text: "Pogingen: 2"})
	require.NoError(t, err)

	m, err := mail.ReadMessage(strings.NewReader(string(raw)))
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", m.Header.Get("Content-Type"))
	body, err := io.ReadAll(m.Body)
	require.NoError(t, err)
	assert.Equal(t, "Pogingen: 2", string(body))
}

type fakeBot struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func TestTelegramSender(t *testing.T) {
	bot := &fakeBot{}
	inits := 0
	orig := newTelegramBot
	newTelegramBot = func(token string) (telegramBot, error) {
		inits++
		assert.Equal(t, "123:abc", token)
		return bot, nil
	}
	t.Cleanup(func() { newTelegramBot = orig })

	s := NewTelegramSender("123:abc", 42)
	require.NoError(t, s.Send(context.Background(), Message{Subject: "S", Text: "T"}))
	require.NoError(t, s.Send(context.Background(), Message{Subject: "S2", Text: "T2"}))

	assert.Equal(t, 1, inits, "bot is created once")
	require.Len(t, bot.sent, 2)
	msg, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, "S\n\nT", msg.Text)
}

func TestTelegramSender_InitError(t *testing.T) {
	orig := newTelegramBot
	newTelegramBot = func(string) (telegramBot, error) { return nil, errors.New("unauthorized") }
	t.Cleanup(func() { newTelegramBot = orig })

	err := NewTelegramSender("bad", 1).Send(context.Background(), Message{})
	assert.ErrorContains(t, err, "telegram init")
}

type fakeBus struct {
	method string
	args   []any
	err    error
}

func (f *fakeBus) CallWithContext(_ context.Context, method string, _ dbus.Flags, args ...any) *dbus.Call {
	f.method = method
	f.args = args
	return &dbus.Call{Err: f.err}
}

func TestDesktopSender(t *testing.T) {
	bus := &fakeBus{}
	closed := false
	d := &DesktopSender{connect: func() (busObject, func() error, error) {
		return bus, func() error { closed = true; return nil }, nil
	}}

	require.NoError(t, d.Send(context.Background(), Message{Subject: "Booked", Text: "Pilates 20:00"}))
	assert.True(t, closed)
	assert.Equal(t, notifyMethod, bus.method)
	require.Len(t, bus.args, 8)
	assert.Equal(t, "Booked", bus.args[3])
	assert.Equal(t, "Pilates 20:00", bus.args[4])

	bus.err = errors.New("no notification daemon")
	assert.Error(t, d.Send(context.Background(), Message{}))
}

func slogDiscard() *slog.Logger { return slog.New(slog.DiscardHandler) }

type blockingSender struct {
	hadDeadline bool
}

func (b *blockingSender) Name() string { return "stalled" }

func (b *blockingSender) Send(ctx context.Context, _ Message) error {
	_, b.hadDeadline = ctx.Deadline()
	<-ctx.Done()
	return ctx.Err()
}

func TestDispatcher_BoundsEachSender(t *testing.T) {
	l, loc := testLesson(t)
	stalled := &blockingSender{}
	ok := &recordingSender{name: "ok"}
	d := NewDispatcher(loc, nil, stalled, ok)
	d.timeout = 50 * time.Millisecond

	done := make(chan struct{})
	go func() {
		d.NotifySuccess(context.Background(), l)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked on a stalled backend")
	}
	assert.True(t, stalled.hadDeadline)
	assert.Len(t, ok.got, 1, "later backends still run")
}

// silentSMTP accepts connections and never sends a greeting.
func silentSMTP(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var conns []net.Conn
	accepted := make(chan struct{})
	go func() {
		defer close(accepted)
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			conns = append(conns, c)
		}
	}()
	t.Cleanup(func() {
		ln.Close()
		<-accepted
		for _, c := range conns {
			c.Close()
		}
	})

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

func TestEmailSender_SilentServerTimesOut(t *testing.T) {
	host, port := silentSMTP(t)
	l, loc := testLesson(t)
	email := NewEmailSender(config.NotifyConfig{
		EmailFrom:  "bot@example.com",
		EmailTo:    "me@example.com",
		SMTPServer: host,
		SMTPPort:   port,
	})
	d := NewDispatcher(loc, nil, email)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		d.NotifySuccess(ctx, l)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("NotifySuccess still blocked after the context deadline")
	}
}

func TestEmailSender_SendErrorOnSilentServer(t *testing.T) {
	host, port := silentSMTP(t)
	email := NewEmailSender(config.NotifyConfig{
		EmailFrom:  "bot@example.com",
		EmailTo:    "me@example.com",
		SMTPServer: host,
		SMTPPort:   port,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	err := email.Send(ctx, Message{Subject: "hi", Text: "x"})
	assert.ErrorContains(t, err, "smtp greeting")
}
