package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, driver_id, shift_id, platform, source, fare,
	pickup_km, pickup_min, dest_km, dest_min, gps_km, gps_min,
	date, started_at, ended_at, created_at`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.q.ExecContext(ctx, query,
		trip.ID,
		trip.DriverID,
		nullString(trip.ShiftID),
		trip.Platform,
		trip.Source,
		trip.Fare,
		trip.PickupKm,
		trip.PickupMin,
		trip.DestKm,
		trip.DestMin,
		trip.GPSKm,
		trip.GPSMin,
		trip.Date,
		nullTime(trip.StartedAt),
		nullTime(trip.EndedAt),
		trip.CreatedAt,
	)

	return mapError(err)
}

// GetByID retrieves one of a driver's trips.
func (r *TripRepository) GetByID(ctx context.Context, driverID, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 AND driver_id = $2`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id, driverID))
	if err != nil {
		return nil, mapError(err)
	}
	return trip, nil
}

// ListByDriver returns a driver's trips, newest first.
func (r *TripRepository) ListByDriver(ctx context.Context, driverID string, filter repository.TripFilter) ([]*domain.Trip, error) {
	where := []string{"driver_id = $1"}
	args := []any{driverID}

	if !filter.Since.IsZero() {
		args = append(args, filter.Since)
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.Date != "" {
		args = append(args, filter.Date)
		where = append(where, fmt.Sprintf("date = $%d", len(args)))
	}
	if filter.ShiftID != "" {
		args = append(args, filter.ShiftID)
		where = append(where, fmt.Sprintf("shift_id = $%d", len(args)))
	}

	query := `SELECT ` + tripColumns + ` FROM trips WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}

	return trips, rows.Err()
}

// Delete removes one of a driver's trips.
func (r *TripRepository) Delete(ctx context.Context, driverID, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM trips WHERE id = $1 AND driver_id = $2`, id, driverID)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var (
		trip      domain.Trip
		shiftID   sql.NullString
		date      time.Time
		startedAt sql.NullTime
		endedAt   sql.NullTime
	)

	if err := row.Scan(
		&trip.ID,
		&trip.DriverID,
		&shiftID,
		&trip.Platform,
		&trip.Source,
		&trip.Fare,
		&trip.PickupKm,
		&trip.PickupMin,
		&trip.DestKm,
		&trip.DestMin,
		&trip.GPSKm,
		&trip.GPSMin,
		&date,
		&startedAt,
		&endedAt,
		&trip.CreatedAt,
	); err != nil {
		return nil, err
	}

	trip.ShiftID = shiftID.String
	trip.Date = date.Format(domain.DateLayout)
	if startedAt.Valid {
		trip.StartedAt = startedAt.Time
	}
	if endedAt.Valid {
		trip.EndedAt = endedAt.Time
	}

	return &trip, nil
}
