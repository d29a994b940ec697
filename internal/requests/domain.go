package requests

import "time"

// Request statuses follow the filing workflow.
const (
	StatusSubmitted  = "submitted"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

// ServiceRequest represents a tax filing request raised by a customer.
type ServiceRequest struct {
	ID         int64
	CustomerID int64
	TaxYear    int
	Category   string
	Summary    string
	Status     string
	AssigneeID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
