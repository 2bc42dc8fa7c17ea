package service

import (
	"context"
	"fmt"

	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"

	"gopkg.in/gomail.v2"
)

type emailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
}

// NewEmailService returns an SMTP sender backed by gomail.
func NewEmailService(host string, port int, username, password, from, fromName string) events.EmailSender {
	return &emailService{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
	}
}

func (s *emailService) SendEmail(ctx context.Context, to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)

	logger.ExternalServiceCall("smtp", "DialAndSend", "to", to, "subject", subject)
	err := d.DialAndSend(m)
	logger.ExternalServiceResult("smtp", "DialAndSend", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email via gomail: %w", err)
	}

	return nil
}

type logEmailService struct{}

// NewLogEmailService returns a sender that only logs, for local development.
func NewLogEmailService() events.EmailSender {
	return logEmailService{}
}

func (logEmailService) SendEmail(ctx context.Context, to, subject, body string) error {
	logger.InfoContext(ctx, "Email (not sent)", "to", to, "subject", subject, "body", body)
	return nil
}
