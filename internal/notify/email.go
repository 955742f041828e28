package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/example/lessonsched/internal/config"
)

// implicitTLSPort is the SMTP submission port that expects TLS from the
// first byte. Every other port upgrades with STARTTLS.
const implicitTLSPort = 465

// sessionTimeout bounds one SMTP conversation from dial to QUIT.
const sessionTimeout = 30 * time.Second

type EmailSender struct {
	from      mail.Address
	to        []string
	host      string
	port      int
	user      string
	password  string
	dialer    net.Dialer
	now       func() time.Time
	tlsConfig *tls.Config
}

func NewEmailSender(cfg config.NotifyConfig) *EmailSender {
	var to []string
	for _, addr := range strings.Split(cfg.EmailTo, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return &EmailSender{
		from:      mail.Address{Name: cfg.SenderName, Address: cfg.EmailFrom},
		to:        to,
		host:      cfg.SMTPServer,
		port:      cfg.SMTPPort,
		user:      cfg.SMTPUser,
		password:  cfg.SMTPPassword,
		dialer:    net.Dialer{Timeout: 30 * time.Second},
		now:       time.Now,
		tlsConfig: &tls.Config{ServerName: cfg.SMTPServer, MinVersion: tls.VersionTLS12},
	}
}

func (e *EmailSender) Name() string { return "email" }

func (e *EmailSender) Send(ctx context.Context, msg Message) error {
	body, err := e.compose(msg)
	if err != nil {
		return fmt.Errorf("compose email: %w", err)
	}

	c, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if e.user != "" && e.password != "" {
		if err := c.Auth(smtp.PlainAuth("", e.user, e.password, e.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(e.from.Address); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, rcpt := range e.to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("write email: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish email: %w", err)
	}
	return c.Quit()
}

// connect dials the server and bounds the whole SMTP session by the
// earlier of ctx's deadline and sessionTimeout.
func (e *EmailSender) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(e.host, strconv.Itoa(e.port))

	var (
		conn net.Conn
		err  error
	)
	if e.port == implicitTLSPort {
		d := tls.Dialer{NetDialer: &e.dialer, Config: e.tlsConfig}
		conn, err = d.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = e.dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if err := conn.SetDeadline(e.deadline(ctx)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	c, err := smtp.NewClient(conn, e.host)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("smtp greeting: %w", err)
	}
	if e.port != implicitTLSPort {
		if err := c.StartTLS(e.tlsConfig); err != nil {
			c.Close()
			return nil, fmt.Errorf("starttls: %w", err)
		}
	}
	return c, nil
}

func (e *EmailSender) deadline(ctx context.Context) time.Time {
	dl := time.Now().Add(sessionTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(dl) {
		return d
	}
	return dl
}

// compose renders msg as a MIME message, multipart/alternative when an
// HTML body is present.
func (e *EmailSender) compose(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", e.from.String())
	header("To", strings.Join(e.to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", e.now().Format(time.RFC1123Z))
	header("MIME-Version", "1.0")

	if msg.HTML == "" {
		header("Content-Type", "text/plain; charset=utf-8")
		header("Content-Transfer-Encoding", "quoted-printable")
		buf.WriteString("\r\n")
		if err := writeQP(&buf, msg.Text); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}

	mw := multipart.NewWriter(&buf)
	header("Content-Type", "multipart/alternative; boundary="+mw.Boundary())
	buf.WriteString("\r\n")

	for _, part := range []struct{ ctype, body string }{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		w, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {part.ctype},
			"Content-Transfer-Encoding": {"quoted-printable"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeQP(w, part.body); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeQP(w io.Writer, s string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := qp.Write([]byte(s)); err != nil {
		return err
	}
	return qp.Close()
}
