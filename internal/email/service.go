package email

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/smarthealthpro/booking-api/internal/config"
)

const signature = "Smart Health Pro Team"

// Service sends transactional mail to patients and doctors.
type Service interface {
	SendCancellation(to, patientName, date, timeOfDay string) error
	SendCustom(to, subject, body string) error
}

type service struct {
	dialer *gomail.Dialer
	from   string
}

func NewService(cfg config.SMTPConfig) Service {
	return &service{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *service) SendCancellation(to, patientName, date, timeOfDay string) error {
	body := fmt.Sprintf(
		"Dear %s,\n\nYour appointment on %s at %s has been cancelled.\n\nIf you did not request this change, please contact our front desk.\n\nBest regards,\n%s",
		patientName, date, timeOfDay, signature,
	)
	return s.SendCustom(to, "Appointment Cancelled", body)
}

func (s *service) SendCustom(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
