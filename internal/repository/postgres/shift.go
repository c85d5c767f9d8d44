package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rutaflow/internal/domain"
)

// ShiftRepository is a PostgreSQL implementation of repository.ShiftRepository.
type ShiftRepository struct {
	q Querier
}

// NewShiftRepository creates a new PostgreSQL shift repository.
func NewShiftRepository(db *sql.DB) *ShiftRepository {
	return &ShiftRepository{q: db}
}

// NewShiftRepositoryWithTx creates a shift repository using a transaction.
func NewShiftRepositoryWithTx(tx *sql.Tx) *ShiftRepository {
	return &ShiftRepository{q: tx}
}

const shiftColumns = `id, driver_id, date, started_at, ended_at, running,
	gps_km, total_net, total_km, trip_count`

// Create persists a newly started session.
func (r *ShiftRepository) Create(ctx context.Context, s *domain.ShiftSession) error {
	query := `
		INSERT INTO shifts (` + shiftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.q.ExecContext(ctx, query,
		s.ID,
		s.DriverID,
		s.Date,
		s.StartedAt,
		nullTime(s.EndedAt),
		s.Running,
		s.GPSKm,
		s.TotalNet,
		s.TotalKm,
		s.TripCount,
	)

	return mapError(err)
}

// Update saves progress or the final totals of a session.
func (r *ShiftRepository) Update(ctx context.Context, s *domain.ShiftSession) error {
	query := `
		UPDATE shifts
		SET ended_at = $1, running = $2, gps_km = $3, total_net = $4, total_km = $5, trip_count = $6
		WHERE id = $7 AND driver_id = $8
	`

	result, err := r.q.ExecContext(ctx, query,
		nullTime(s.EndedAt),
		s.Running,
		s.GPSKm,
		s.TotalNet,
		s.TotalKm,
		s.TripCount,
		s.ID,
		s.DriverID,
	)
	if err != nil {
		return mapError(err)
	}

	return affectedOne(result)
}

// GetRunningByDriverID retrieves the running session for a driver.
// Returns nil if no session is running.
func (r *ShiftRepository) GetRunningByDriverID(ctx context.Context, driverID string) (*domain.ShiftSession, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE driver_id = $1 AND running LIMIT 1`

	s, err := scanShift(r.q.QueryRowContext(ctx, query, driverID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

// ListEnded returns a driver's ended sessions, most recent first.
func (r *ShiftRepository) ListEnded(ctx context.Context, driverID string, limit int) ([]*domain.ShiftSession, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT ` + shiftColumns + ` FROM shifts
		WHERE driver_id = $1 AND NOT running
		ORDER BY ended_at DESC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, driverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*domain.ShiftSession
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func scanShift(row rowScanner) (*domain.ShiftSession, error) {
	var (
		s       domain.ShiftSession
		date    time.Time
		endedAt sql.NullTime
	)

	if err := row.Scan(
		&s.ID,
		&s.DriverID,
		&date,
		&s.StartedAt,
		&endedAt,
		&s.Running,
		&s.GPSKm,
		&s.TotalNet,
		&s.TotalKm,
		&s.TripCount,
	); err != nil {
		return nil, err
	}

	s.Date = date.Format(domain.DateLayout)
	if endedAt.Valid {
		s.EndedAt = endedAt.Time
	}

	return &s, nil
}
