package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"karhubty-backend/internal/events"
	"karhubty-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendGridService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

// NewSendGridService returns a sender backed by the SendGrid v3 API.
func NewSendGridService(apiKey, fromEmail, fromName string) events.EmailSender {
	return &sendGridService{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *sendGridService) SendEmail(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail("", to)
	htmlContent := "<p>" + strings.ReplaceAll(html.EscapeString(body), "\n", "<br>") + "</p>"

	message := mail.NewSingleEmail(from, subject, recipient, body, htmlContent)

	logger.ExternalServiceCall("sendgrid", "Send", "to", to, "subject", subject)
	response, err := s.client.SendWithContext(ctx, message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "to", to)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
