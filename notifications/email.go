package notifications

import (
	"fmt"

	"gopkg.in/mail.v2"
)

// Sender delivers a plain text message to one recipient.
type Sender interface {
	SendMail(to, subject, body string) error
}

type EmailService struct {
	smtpHost string
	smtpPort int
	username string
	password string
	from     string
}

func NewEmailService(host string, port int, username, password string) *EmailService {
	return &EmailService{
		smtpHost: host,
		smtpPort: port,
		username: username,
		password: password,
		from:     username,
	}
}

func (s *EmailService) SendMail(to, subject, body string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := mail.NewDialer(s.smtpHost, s.smtpPort, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
