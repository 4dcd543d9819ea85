package notify

import (
	"fmt"
	"net/smtp"
	"strings"
)

type EmailSender interface {
	SendEmail(to string, subject string, body string) error
}

// SMTPSender sends plain-text email via unauthenticated SMTP.
type SMTPSender struct {
	addr string
	from string
}

func NewSMTPSender(host string, port string, from string) *SMTPSender {
	host = strings.TrimSpace(host)
	port = strings.TrimSpace(port)
	from = strings.TrimSpace(from)
	if from == "" {
		from = "no-reply@bocm.us"
	}
	return &SMTPSender{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (s *SMTPSender) SendEmail(to string, subject string, body string) error {
	msg := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		s.from,
		to,
		subject,
		body,
	)
	return smtp.SendMail(s.addr, nil, s.from, []string{to}, []byte(msg))
}

type NoopEmailSender struct{}

func (NoopEmailSender) SendEmail(_ string, _ string, _ string) error {
	return nil
}
