package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/bloghub/internal/mail"
	"github.com/sakif/bloghub/internal/validate"
)

// ContactInput is the contact form.
type ContactInput struct {
	Name    string `form:"name" validate:"required,max=100"`
	Email   string `form:"email" validate:"required,email"`
	Subject string `form:"subject" validate:"required,max=200"`
	Message string `form:"message" validate:"required,max=10000"`
}

// ContactService forwards contact messages to the site owner.
type ContactService struct {
	mailer mail.Mailer
	to     string
	logger *slog.Logger
}

func NewContactService(mailer mail.Mailer, to string, logger *slog.Logger) *ContactService {
	return &ContactService{mailer: mailer, to: to, logger: logger}
}

// Send mails the message to the owner with the visitor as Reply-To. A relay
// failure is returned unchanged in meaning and shows up as a server error.
func (s *ContactService) Send(ctx context.Context, in ContactInput) error {
	if err := validate.Struct(in); err != nil {
		return err
	}

	msg := mail.Message{
		To:      s.to,
		ReplyTo: in.Email,
		Subject: in.Subject,
		Body:    fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", in.Name, in.Email, in.Message),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("service/contact: %w", err)
	}

	s.logger.Info("contact message sent", slog.String("from", in.Email))
	return nil
}
