package repository

import (
	"context"

	"rutaflow/internal/domain"
)

// ShiftRepository defines the persistence operations for work days.
type ShiftRepository interface {
	// Create persists a newly started session.
	Create(ctx context.Context, s *domain.ShiftSession) error

	// Update saves progress or the final totals of a session.
	Update(ctx context.Context, s *domain.ShiftSession) error

	// GetRunningByDriverID retrieves the running session for a driver.
	// Returns nil if no session is running.
	GetRunningByDriverID(ctx context.Context, driverID string) (*domain.ShiftSession, error)

	// ListEnded returns a driver's ended sessions, most recent first.
	ListEnded(ctx context.Context, driverID string, limit int) ([]*domain.ShiftSession, error)
}
