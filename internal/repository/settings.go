package repository

import (
	"context"

	"rutaflow/internal/domain"
)

// SettingsRepository stores one configuration per driver.
type SettingsRepository interface {
	// Get returns ErrNotFound when the driver never saved settings.
	Get(ctx context.Context, driverID string) (*domain.Settings, error)

	// Upsert replaces the driver's settings.
	Upsert(ctx context.Context, driverID string, s *domain.Settings) error
}
