package mail

import (
	"context"

	"github.com/go-faster/errors"
	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig configures the outbound relay connection.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// FromName is the display name on outgoing mail; the address is the
	// relay username, matching the upstream account.
	FromName string
	// Insecure disables TLS and authentication. Local test sinks only.
	Insecure bool
}

var _ Sender = (*SMTPSender)(nil)

// SMTPSender sends mail through an SMTP relay with STARTTLS and plain
// auth (the Gmail app-password profile). The client is constructed once
// at process start; each Send dials, delivers and closes.
type SMTPSender struct {
	client *gomail.Client
	cfg    SMTPConfig
}

// NewSMTPSender creates an SMTPSender for the given relay.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}
	if cfg.Insecure {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.NoTLS))
	} else {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
			gomail.WithTLSPortPolicy(gomail.TLSMandatory),
		)
	}

	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create smtp client")
	}
	return &SMTPSender{client: client, cfg: cfg}, nil
}

// Send delivers a single plain-text message. The request blocks until
// the relay accepts or rejects it; no retry.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.cfg.FromName, s.cfg.Username); err != nil {
		return errors.Wrap(err, "set from")
	}
	if err := m.To(msg.To); err != nil {
		return errors.Wrap(err, "set recipient")
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)

	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return errors.Wrap(err, "send mail")
	}
	return nil
}
