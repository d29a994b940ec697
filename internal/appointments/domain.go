package appointments

import "time"

// Appointment statuses.
const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Appointment represents a consultation slot booked by a customer.
type Appointment struct {
	ID          int64
	CustomerID  int64
	Topic       string
	ScheduledAt time.Time
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
