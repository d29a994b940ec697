package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-admin/meridian/jobs"
)

// RepositoryPort defines data access methods for appointments.
type RepositoryPort interface {
	List(ctx context.Context) ([]Appointment, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]Appointment, error)
	Create(ctx context.Context, appt Appointment) (Appointment, error)
}

// Notifier enqueues transactional mail for booked appointments.
type Notifier interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) error
}

// Service handles appointment business logic.
type Service struct {
	repo     RepositoryPort
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance. notifier may be nil in environments
// without a worker; booking then simply skips the confirmation mail.
func NewService(repo RepositoryPort, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// List returns all appointments.
func (s *Service) List(ctx context.Context) ([]Appointment, error) {
	return s.repo.List(ctx)
}

// ListOwn returns the caller's own appointments.
func (s *Service) ListOwn(ctx context.Context, customerID int64) ([]Appointment, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Book creates an appointment and queues a confirmation email. A queue
// failure does not fail the booking.
func (s *Service) Book(ctx context.Context, customerID int64, customerEmail, topic string, at time.Time) (Appointment, error) {
	if at.Before(time.Now()) {
		return Appointment{}, errors.New("appointments: scheduled time must be in the future")
	}
	appt, err := s.repo.Create(ctx, Appointment{CustomerID: customerID, Topic: topic, ScheduledAt: at})
	if err != nil {
		return Appointment{}, err
	}
	if s.notifier != nil && customerEmail != "" {
		payload := jobs.SendEmailPayload{
			To:      customerEmail,
			Subject: "Appointment confirmed",
			Body:    fmt.Sprintf("Your appointment %q is confirmed for %s.", topic, at.Format(time.RFC1123)),
		}
		if err := s.notifier.EnqueueSendEmail(ctx, payload); err != nil && s.logger != nil {
			s.logger.Warn("enqueue confirmation mail", slog.Any("error", err))
		}
	}
	return appt, nil
}
