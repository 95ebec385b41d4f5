// Package mail sends the contact form to the site owner.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Message is a plain-text email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers a Message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends through a relay with PLAIN auth over STARTTLS (port 587)
// or implicit TLS handled by the relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a mailer for host:port. Mail is sent from username.
func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     username,
		send:     smtp.SendMail,
	}
}

// Send delivers msg. smtp.SendMail has no context support, so ctx is only
// checked before dialing.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var a smtp.Auth
	if m.username != "" {
		a = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	if err := m.send(addr, a, m.from, []string{msg.To}, Build(m.from, msg, time.Now())); err != nil {
		return fmt.Errorf("mail: sending to %s via %s: %w", msg.To, addr, err)
	}
	return nil
}

// LogMailer writes messages to the log instead of sending them. The server
// uses it when no relay is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("mail not sent, no SMTP relay configured",
		slog.String("to", msg.To),
		slog.String("reply_to", msg.ReplyTo),
		slog.String("subject", msg.Subject),
		slog.Int("body_bytes", len(msg.Body)),
	)
	return nil
}

// Build renders msg as an RFC 5322 message with CRLF line endings.
func Build(from string, msg Message, now time.Time) []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}

	header("From", from)
	header("To", msg.To)
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", oneLine(msg.Subject)))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	b.WriteString("\r\n")

	body := strings.ReplaceAll(msg.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}

// oneLine strips line breaks so user input cannot add headers.
func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
