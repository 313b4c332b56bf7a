package utils

import (
	"errors"

	"gopkg.in/gomail.v2"

	"restaurant/config"
)

var ErrMailerDisabled = errors.New("smtp is not configured")

type Mailer struct {
	settings config.SMTPSettings
}

func NewMailer(settings config.SMTPSettings) *Mailer {
	return &Mailer{settings: settings}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.settings.Enabled()
}

func (m *Mailer) SendEmail(to, subject, body string) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.settings.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.settings.Host, m.settings.Port, m.settings.User, m.settings.Password)

	return d.DialAndSend(msg)
}
