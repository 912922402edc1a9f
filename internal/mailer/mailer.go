package mailer

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"

	"mdt-app-server/internal/config"
)

// Mailer sends the handful of notification mails the app produces. When
// SMTP is not configured every send is a logged no-op, so the app works
// without a mail server.
type Mailer struct {
	cfg config.MailerConfig
}

// New creates a Mailer from the mail section of the app config.
func New(cfg config.MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// NotifyRegistration tells the administrator that a new account is
// waiting to be confirmed.
func (m *Mailer) NotifyRegistration(username, email string) error {
	if m.cfg.AdminEmail == "" {
		return nil
	}
	subject := "MDT app: new account awaiting confirmation"
	body := fmt.Sprintf("User %q (%s) has registered and needs their account confirmed.", username, email)
	return m.send(m.cfg.AdminEmail, subject, body)
}

// SendTemporaryPassword mails a user the temporary password an
// administrator set for them.
func (m *Mailer) SendTemporaryPassword(email, username, password string) error {
	subject := "MDT app: your password has been reset"
	body := fmt.Sprintf("A temporary password has been set for account %q: %s\nPlease change it after logging in.", username, password)
	return m.send(email, subject, body)
}

func (m *Mailer) send(to, subject, body string) error {
	if !m.cfg.Enabled() {
		log.Printf("mail disabled, skipping %q to %s", subject, to)
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.DefaultFrom)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.cfg.SMTPHost, m.cfg.SMTPPort, m.cfg.SMTPUser, m.cfg.SMTPPass)
	if err := d.DialAndSend(msg); err != nil {
		log.Printf("failed to send mail to %s: %v", to, err)
		return err
	}
	return nil
}
