package mail

import (
	"fmt"
	"net/smtp"

	"github.com/gofiber/fiber/v2/log"

	"github.com/vitrinehq/vitrine/internal/pkg/env"
)

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(to string, subject string, body string) error
}

// Config holds SMTP settings
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
}

// LoadConfig loads SMTP configuration from environment variables
func LoadConfig() *Config {
	cfg := &Config{
		Host:     env.GetEnv("SMTP_HOST", ""),
		Port:     env.GetEnv("SMTP_PORT", "25"),
		Username: env.GetEnv("SMTP_USERNAME", ""),
		Password: env.GetEnv("SMTP_PASSWORD", ""),
		Sender:   env.GetEnv("SMTP_SENDER", ""),
	}
	if cfg.Sender == "" {
		cfg.Sender = "no-reply@localhost"
		log.Warnf("[Mail] SMTP_SENDER not set, using default sender: %s", cfg.Sender)
	}
	return cfg
}

// IsEnabled reports whether an SMTP host is configured.
func (c *Config) IsEnabled() bool {
	return c.Host != ""
}

// SMTPMailer sends emails via SMTP
type SMTPMailer struct {
	cfg      *Config
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(cfg *Config) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, sendMail: smtp.SendMail}
}

func (m *SMTPMailer) Send(to string, subject string, body string) error {
	var auth smtp.Auth
	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%s", m.cfg.Host, m.cfg.Port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", m.cfg.Sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	if err := m.sendMail(addr, auth, m.cfg.Sender, []string{to}, msg); err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
		return err
	}
	log.Infof("[Mail] Email sent to %s via %s", to, addr)
	return nil
}

// LogMailer only logs messages. Used when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(to string, subject string, body string) error {
	log.Infof("[Mail] SMTP disabled, dropping %q to %s", subject, to)
	return nil
}
