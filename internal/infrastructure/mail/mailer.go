package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// Config holds the SMTP settings of the invite mailer.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	LoginURL string
}

// SMTPMailer sends consultant invitations over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	cfg    Config
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		cfg:    cfg,
	}
}

// SendInvite mails the temporary credentials of a newly invited consultant.
func (m *SMTPMailer) SendInvite(ctx context.Context, to, name, temporaryPassword string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "You have been invited to start therapy")
	msg.SetBody("text/plain", inviteBody(name, to, temporaryPassword, m.cfg.LoginURL))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send invite to %s: %w", to, err)
	}
	return nil
}

func inviteBody(name, email, password, loginURL string) string {
	body := fmt.Sprintf("Hello %s,\n\nYour psychologist has invited you to the platform.\n\nEmail: %s\nTemporary password: %s\n\nYou will be asked to choose a new password on your first login.\n", name, email, password)
	if loginURL != "" {
		body += "\nSign in at " + loginURL + "\n"
	}
	return body
}

// LogMailer only logs invitations. It is used when SMTP is not configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendInvite(_ context.Context, to, name, _ string) error {
	m.log.Info().Str("to", to).Str("name", name).Msg("smtp not configured, invite email skipped")
	return nil
}
