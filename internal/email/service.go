package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/mediiq/mediiq-api/internal/config"
)

type Service interface {
	// SendAdherenceAlert notifies a caregiver that a scheduled dose was
	// skipped.
	SendAdherenceAlert(ctx context.Context, to, memberName, medicine, dose string) error
}

type service struct {
	cfg    config.EmailConfig
	dialer *gomail.Dialer
}

func NewService(cfg config.EmailConfig) Service {
	return &service{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *service) SendAdherenceAlert(ctx context.Context, to, memberName, medicine, dose string) error {
	if !s.cfg.Configured() {
		// Alerting is optional; without SMTP config it degrades silently.
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("MediIQ: %s skipped a dose of %s", memberName, medicine))
	m.SetBody("text/plain", fmt.Sprintf(
		"%s skipped a scheduled dose of %s (%s). Repeated skips can affect treatment. You may want to check in.",
		memberName, medicine, dose,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send adherence alert: %w", err)
	}
	return nil
}
