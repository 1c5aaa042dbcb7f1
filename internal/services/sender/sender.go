// Package services содержит воркер рассылки: превращает события подписки
// из очереди в письма пользователям.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/sl"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/lib/smtp"
	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/rabbitmq"
)

// SenderService отправляет письма о событиях подписки.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// HandleSubscriptionEvent обрабатывает одно сообщение из очереди уведомлений.
func (s *SenderService) HandleSubscriptionEvent(body []byte) error {
	var event rabbitmq.SubscriptionEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject, bodyText := composeMessage(event)
	if subject == "" {
		s.log.Warn("unknown subscription event action", slog.String("action", event.Action))
		return nil
	}

	return s.sendEmail([]string{event.Email}, subject, bodyText)
}

func composeMessage(event rabbitmq.SubscriptionEvent) (subject, bodyText string) {
	switch event.Action {
	case rabbitmq.ActionCreated:
		subject = "Your ImageHub Pro subscription is active"
		bodyText = fmt.Sprintf("Hello %s!\n\nYour Pro subscription is now active.", event.Name)
		if event.Expiry != nil {
			bodyText += fmt.Sprintf(" The current period runs until %s.",
				event.Expiry.Format("02 Jan 2006"))
		}
	case rabbitmq.ActionUpdated:
		subject = "Your ImageHub subscription plan was updated"
		bodyText = fmt.Sprintf("Hello %s!\n\nYour subscription plan has been updated.", event.Name)
	case rabbitmq.ActionResumed:
		subject = "Your ImageHub subscription was resumed"
		bodyText = fmt.Sprintf("Hello %s!\n\nYour subscription will renew as usual.", event.Name)
	case rabbitmq.ActionCancelled:
		subject = "Your ImageHub subscription was cancelled"
		bodyText = fmt.Sprintf("Hello %s!\n\nYour subscription will not renew.", event.Name)
		if event.Expiry != nil {
			bodyText += fmt.Sprintf(" Uploads stay available until %s.",
				event.Expiry.Format("02 Jan 2006"))
		}
	}
	return subject, bodyText
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetFrom(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(closeErr))
		}
	}()

	if err := client.Mail(s.transport.GetFrom()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetFrom()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
