package requests

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-admin/meridian/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all service requests ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]ServiceRequest, error) {
	return r.query(ctx, `
		SELECT id, customer_id, tax_year, category, summary, status, assignee_id, created_at, updated_at
		FROM service_requests ORDER BY created_at DESC`)
}

// ListByCustomer returns the requests belonging to one customer.
func (r *Repository) ListByCustomer(ctx context.Context, customerID int64) ([]ServiceRequest, error) {
	return r.query(ctx, `
		SELECT id, customer_id, tax_year, category, summary, status, assignee_id, created_at, updated_at
		FROM service_requests WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
}

// Create inserts a new service request in submitted state.
func (r *Repository) Create(ctx context.Context, req ServiceRequest) (ServiceRequest, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO service_requests (customer_id, tax_year, category, summary, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		req.CustomerID, req.TaxYear, req.Category, req.Summary, StatusSubmitted)
	if err := row.Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return ServiceRequest{}, err
	}
	req.Status = StatusSubmitted
	return req, nil
}

// Assign sets the operator responsible for a request.
func (r *Repository) Assign(ctx context.Context, requestID, assigneeID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE service_requests
		SET assignee_id = $2, status = $3, updated_at = NOW()
		WHERE id = $1`, requestID, assigneeID, StatusInProgress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]ServiceRequest, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()
	var out []ServiceRequest
	for rows.Next() {
		var req ServiceRequest
		if err := rows.Scan(&req.ID, &req.CustomerID, &req.TaxYear, &req.Category, &req.Summary, &req.Status, &req.AssigneeID, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ RepositoryPort = (*Repository)(nil)
