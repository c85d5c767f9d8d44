package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"rutaflow/internal/domain"
)

// SettingsRepository is a PostgreSQL implementation of
// repository.SettingsRepository. Settings are stored as one JSONB document
// so new cost items need no schema change.
type SettingsRepository struct {
	q Querier
}

// NewSettingsRepository creates a new PostgreSQL settings repository.
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{q: db}
}

// NewSettingsRepositoryWithTx creates a settings repository using a transaction.
func NewSettingsRepositoryWithTx(tx *sql.Tx) *SettingsRepository {
	return &SettingsRepository{q: tx}
}

// Get returns repository.ErrNotFound when the driver never saved settings.
func (r *SettingsRepository) Get(ctx context.Context, driverID string) (*domain.Settings, error) {
	var raw []byte
	err := r.q.QueryRowContext(ctx,
		`SELECT settings FROM driver_settings WHERE driver_id = $1`, driverID,
	).Scan(&raw)
	if err != nil {
		return nil, mapError(err)
	}

	s := domain.DefaultSettings()
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert replaces the driver's settings.
func (r *SettingsRepository) Upsert(ctx context.Context, driverID string, s *domain.Settings) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO driver_settings (driver_id, settings, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (driver_id) DO UPDATE SET settings = EXCLUDED.settings, updated_at = now()
	`
	_, err = r.q.ExecContext(ctx, query, driverID, raw)
	return mapError(err)
}
