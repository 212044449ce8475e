package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/nutriclinic/backoffice/internal/config"
	"github.com/nutriclinic/backoffice/pkg/logger"
)

type Service interface {
	// SendDietDraft mails the narrative diet proposal produced after a
	// consultation to the patient.
	SendDietDraft(ctx context.Context, to, patientName, draft string) error
	SendCustom(ctx context.Context, to, subject, body string) error
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type service struct {
	dialer sender
	from   string
	logger *logger.Logger
}

func NewService(cfg *config.SMTPConfig, log *logger.Logger) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		logger: log,
	}
}

func (s *service) SendDietDraft(ctx context.Context, to, patientName, draft string) error {
	subject := fmt.Sprintf("Propuesta de plan nutricional para %s", patientName)
	body := fmt.Sprintf("Hola %s,\n\n%s\n\nUn saludo,\nTu equipo de nutrición", patientName, draft)
	return s.send(to, subject, body)
}

func (s *service) SendCustom(ctx context.Context, to, subject, body string) error {
	return s.send(to, subject, body)
}

func (s *service) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.Error(err, "failed to send email", "to", to)
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
