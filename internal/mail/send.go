// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"path/filepath"
	"strconv"

	"github.com/pdiddy/flash/internal/failure"
	"github.com/pdiddy/flash/pkg/types"
)

// Transport hands a rendered message to a mail server.
type Transport interface {
	Send(ctx context.Context, from string, to []string, msg []byte) error
}

// tlsTransport speaks SMTP over an implicitly encrypted connection (port 465).
type tlsTransport struct {
	host     string
	addr     string
	username string
	password string
}

func (t *tlsTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	d := tls.Dialer{Config: &tls.Config{ServerName: t.host}}
	conn, err := d.DialContext(ctx, "tcp", t.addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", t.addr, err)
	}

	c, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting SMTP session: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", t.username, t.password, t.host)); err != nil {
		return fmt.Errorf("authenticating as %s: %w", t.username, err)
	}
	if err := c.Mail(from); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("RCPT TO %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}
	return c.Quit()
}

// Sender composes and delivers messages.
type Sender struct {
	from      string
	transport Transport
}

// NewSender builds a Sender for cfg. Username and password are required;
// From defaults to the username.
func NewSender(cfg types.MailConfig) (*Sender, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, failure.New(failure.ConfigInvalid, "mail", "",
			fmt.Errorf("SMTP username and password are required (secrets smtp-username, smtp-password)"))
	}
	host := cfg.Host
	if host == "" {
		host = "smtp.gmail.com"
	}
	port := cfg.Port
	if port == 0 {
		port = 465
	}
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &Sender{
		from: from,
		transport: &tlsTransport{
			host:     host,
			addr:     net.JoinHostPort(host, strconv.Itoa(port)),
			username: cfg.Username,
			password: cfg.Password,
		},
	}, nil
}

// NewSenderWithTransport builds a Sender over an arbitrary transport.
func NewSenderWithTransport(from string, t Transport) *Sender {
	return &Sender{from: from, transport: t}
}

// From returns the sender address.
func (s *Sender) From() string { return s.from }

// Send fills in From when empty, renders m and delivers it.
func (s *Sender) Send(ctx context.Context, m Message) error {
	if m.From == "" {
		m.From = s.from
	}
	msg, err := Compose(m)
	if err != nil {
		return fmt.Errorf("composing message: %w", err)
	}
	if err := s.transport.Send(ctx, m.From, m.To, msg); err != nil {
		return failure.New(failure.NetworkError, "mail", m.Subject, err)
	}
	return nil
}

// KindleMailer sends each delivered book as an attachment to a Kindle
// address.
type KindleMailer struct {
	Sender *Sender
	To     string
}

// MailBook mails the file at path.
func (k *KindleMailer) MailBook(ctx context.Context, path string) error {
	subject := "Kindle book: " + filepath.Base(path)
	return k.Sender.Send(ctx, Message{
		To:          []string{k.To},
		Subject:     subject,
		Body:        subject,
		Attachments: []string{path},
	})
}
