// Package mailer delivers report mails.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-assistant-service/config"
	"github.com/fekuna/omnipos-assistant-service/internal/chart"
	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("mail transport is not configured")

type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []chart.Image
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender, or a disabled one when no host is configured.
func New(cfg *config.SMTPConfig) Sender {
	if cfg == nil || cfg.Host == "" {
		return Disabled{}
	}
	return &SMTPSender{cfg: *cfg}
}

type Disabled struct{}

func (Disabled) Send(context.Context, Message) error {
	return ErrNotConfigured
}

type SMTPSender struct {
	cfg config.SMTPConfig
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := buildMessage(s.cfg.From, msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}
	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func buildMessage(from string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, att := range msg.Attachments {
		err := m.AttachReader(att.Name, bytes.NewReader(att.Data), mail.WithFileContentType(mail.ContentType(att.ContentType)))
		if err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", att.Name, err)
		}
	}
	return m, nil
}
