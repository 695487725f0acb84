package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/shearbook/booking-api/internal/config"
	"github.com/shearbook/booking-api/internal/model"
)

// Service sends transactional mail to clients. Sends are best-effort: the
// booking flow never fails because an email could not be delivered.
type Service interface {
	SendBookingConfirmation(booking *model.Booking) error
	SendCancellationNotice(booking *model.Booking, refund model.RefundOutcome) error
}

type service struct {
	cfg config.EmailConfig
}

func NewService(cfg config.EmailConfig) Service {
	return &service{cfg: cfg}
}

func (s *service) SendBookingConfirmation(booking *model.Booking) error {
	subject := "Your appointment is booked"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment for %s on %s is confirmed.\n\nTotal: $%.2f\nDeposit paid: $%.2f\n\nSee you soon!",
		booking.ClientName,
		booking.ServiceSummary,
		booking.StartAt.Format("Monday, January 2 at 3:04 PM"),
		float64(booking.TotalCents)/100,
		float64(booking.DepositCents)/100,
	)
	return s.send(booking.ClientEmail, subject, body)
}

func (s *service) SendCancellationNotice(booking *model.Booking, refund model.RefundOutcome) error {
	subject := "Your appointment was cancelled"
	refundLine := "No refund was issued."
	if refund.Refunded {
		refundLine = fmt.Sprintf("Your deposit of $%.2f has been refunded.", float64(booking.DepositCents)/100)
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nYour appointment for %s on %s has been cancelled.\n%s",
		booking.ClientName,
		booking.ServiceSummary,
		booking.StartAt.Format("Monday, January 2 at 3:04 PM"),
		refundLine,
	)
	return s.send(booking.ClientEmail, subject, body)
}

func (s *service) send(to, subject, body string) error {
	if !s.cfg.Enabled {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
