package redis

import (
	"context"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/shift"
)

// ShiftStoreInterface defines the interface for running shift snapshots.
type ShiftStoreInterface interface {
	Get(ctx context.Context, driverID string) (*shift.Snapshot, error)
	Save(ctx context.Context, driverID string, snap *shift.Snapshot) error
	Delete(ctx context.Context, driverID string) error
}

// SettingsCacheInterface defines the interface for cached settings.
type SettingsCacheInterface interface {
	GetSettings(ctx context.Context, driverID string) (*domain.Settings, error)
	SetSettings(ctx context.Context, driverID string, settings *domain.Settings) error
	InvalidateSettings(ctx context.Context, driverID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireShiftLock(ctx context.Context, driverID string, ttl time.Duration) (string, error)
	ReleaseShiftLock(ctx context.Context, driverID, token string) error
}

// LocationStoreInterface defines the interface for last-position tracking.
type LocationStoreInterface interface {
	UpdatePosition(ctx context.Context, driverID string, lat, lng float64) error
	LastPosition(ctx context.Context, driverID string) (*DriverPosition, error)
	RemovePosition(ctx context.Context, driverID string) error
}

// IdempotencyStoreInterface defines the interface for replaying mutating requests.
type IdempotencyStoreInterface interface {
	Reserve(ctx context.Context, driverID, key string) (Reservation, *StoredResponse, error)
	Complete(ctx context.Context, driverID, key string, resp *StoredResponse) error
	Release(ctx context.Context, driverID, key string) error
}

// Ensure concrete types implement interfaces.
var (
	_ ShiftStoreInterface    = (*ShiftStore)(nil)
	_ SettingsCacheInterface = (*CacheStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
	_ LocationStoreInterface = (*LocationStore)(nil)

	_ IdempotencyStoreInterface = (*IdempotencyStore)(nil)
)
