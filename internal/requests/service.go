package requests

import (
	"context"
	"errors"
)

// RepositoryPort defines data access methods for service requests.
type RepositoryPort interface {
	List(ctx context.Context) ([]ServiceRequest, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]ServiceRequest, error)
	Create(ctx context.Context, req ServiceRequest) (ServiceRequest, error)
	Assign(ctx context.Context, requestID, assigneeID int64) error
}

// Service handles service request business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all requests.
func (s *Service) List(ctx context.Context) ([]ServiceRequest, error) {
	return s.repo.List(ctx)
}

// ListOwn returns the caller's own requests.
func (s *Service) ListOwn(ctx context.Context, customerID int64) ([]ServiceRequest, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

// Create files a new request for the customer.
func (s *Service) Create(ctx context.Context, customerID int64, taxYear int, category, summary string) (ServiceRequest, error) {
	if taxYear <= 0 {
		return ServiceRequest{}, errors.New("requests: tax year required")
	}
	return s.repo.Create(ctx, ServiceRequest{
		CustomerID: customerID,
		TaxYear:    taxYear,
		Category:   category,
		Summary:    summary,
	})
}

// Assign hands the request to an operator and moves it in progress.
func (s *Service) Assign(ctx context.Context, requestID, assigneeID int64) error {
	return s.repo.Assign(ctx, requestID, assigneeID)
}
