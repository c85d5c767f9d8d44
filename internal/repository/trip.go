package repository

import (
	"context"
	"time"

	"rutaflow/internal/domain"
)

// TripFilter narrows a trip listing. Zero fields do not filter.
type TripFilter struct {
	Since   time.Time // created at or after
	Date    string    // calendar date, domain.DateLayout
	ShiftID string
	Limit   int
}

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip. Trips are never updated afterwards.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves one of a driver's trips.
	GetByID(ctx context.Context, driverID, id string) (*domain.Trip, error)

	// ListByDriver returns a driver's trips, newest first.
	ListByDriver(ctx context.Context, driverID string, filter TripFilter) ([]*domain.Trip, error)

	// Delete removes one of a driver's trips.
	Delete(ctx context.Context, driverID, id string) error
}
