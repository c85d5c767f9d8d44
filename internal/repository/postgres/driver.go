package postgres

import (
	"context"
	"database/sql"

	"rutaflow/internal/domain"
)

// DriverRepository is a PostgreSQL implementation of repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

// Create adds a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `INSERT INTO drivers (id, name, email, created_at) VALUES ($1, $2, $3, $4)`
	_, err := r.q.ExecContext(ctx, query, driver.ID, driver.Name, driver.Email, driver.CreatedAt)
	return mapError(err)
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	return r.getOne(ctx, `SELECT id, name, email, created_at FROM drivers WHERE id = $1`, id)
}

// GetByEmail retrieves a driver by email address, ignoring case.
func (r *DriverRepository) GetByEmail(ctx context.Context, email string) (*domain.Driver, error) {
	return r.getOne(ctx, `SELECT id, name, email, created_at FROM drivers WHERE lower(email) = lower($1)`, email)
}

func (r *DriverRepository) getOne(ctx context.Context, query string, arg any) (*domain.Driver, error) {
	var driver domain.Driver
	err := r.q.QueryRowContext(ctx, query, arg).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Email,
		&driver.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &driver, nil
}
