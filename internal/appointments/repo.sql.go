package appointments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all appointments ordered by schedule.
func (r *Repository) List(ctx context.Context) ([]Appointment, error) {
	return r.query(ctx, `
		SELECT id, customer_id, topic, scheduled_at, status, created_at, updated_at
		FROM appointments ORDER BY scheduled_at`)
}

// ListByCustomer returns appointments for one customer.
func (r *Repository) ListByCustomer(ctx context.Context, customerID int64) ([]Appointment, error) {
	return r.query(ctx, `
		SELECT id, customer_id, topic, scheduled_at, status, created_at, updated_at
		FROM appointments WHERE customer_id = $1 ORDER BY scheduled_at`, customerID)
}

// Create books a new appointment.
func (r *Repository) Create(ctx context.Context, appt Appointment) (Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (customer_id, topic, scheduled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`,
		appt.CustomerID, appt.Topic, appt.ScheduledAt, StatusBooked)
	if err := row.Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
		return Appointment{}, err
	}
	appt.Status = StatusBooked
	return appt, nil
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Appointment
	for rows.Next() {
		var appt Appointment
		if err := rows.Scan(&appt.ID, &appt.CustomerID, &appt.Topic, &appt.ScheduledAt, &appt.Status, &appt.CreatedAt, &appt.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ RepositoryPort = (*Repository)(nil)
