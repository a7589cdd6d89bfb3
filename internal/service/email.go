package service

import (
	"context"
	"fmt"
	"time"

	"rentool-backend/internal/logger"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) SendOverdueReminder(ctx context.Context, toEmail, toName string, rentalID int32, endDate time.Time) error {
	if s.apiKey == "" {
		logger.Debug("SendGrid not configured, skipping overdue reminder", "rental_id", rentalID, "to", toEmail)
		return nil
	}

	subject := "Rental return overdue"
	body := fmt.Sprintf(
		"Hello %s,\n\nYour rental #%d was due back on %s and has not been returned yet. "+
			"Please return the rented tools as soon as possible.\n\nBest regards,\nThe Rentool Team",
		toName, rentalID, endDate.Format("2006-01-02"))

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send overdue reminder: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
