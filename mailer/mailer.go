package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
)

// Message is a rendered notification with both plain-text and HTML parts.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a single message. Implementations do not retry; a failed
// send is reported to the caller and never rolls anything back.
type Mailer interface {
	Send(msg Message) error
}

type SMTPConfig struct {
	Host       string
	Port       int
	User       string
	Pass       string
	SenderName string
}

// SMTPMailer sends mail over authenticated SMTP. A fresh mailyak instance is
// built per send; they are not safe for concurrent reuse.
type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTP(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) Send(msg Message) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	mail := mailyak.New(addr, smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host))
	mail.From(m.cfg.User)
	mail.FromName(m.cfg.SenderName)
	mail.To(msg.To)
	mail.Subject(msg.Subject)
	mail.Plain().Set(msg.Text)
	if msg.HTML != "" {
		mail.HTML().Set(msg.HTML)
	}
	if err := mail.Send(); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}
