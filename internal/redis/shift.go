package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"rutaflow/internal/shift"
)

// ShiftStore keeps the running shift of each driver, including the active
// trip and the last GPS fix, which are not persisted in Postgres.
type ShiftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultShiftTTL is used when NewShiftStore gets a non-positive TTL.
const DefaultShiftTTL = 24 * time.Hour

const shiftKeyPrefix = "shift:active:"

// NewShiftStore creates a new ShiftStore.
func NewShiftStore(client *redis.Client, ttl time.Duration) *ShiftStore {
	if ttl <= 0 {
		ttl = DefaultShiftTTL
	}
	return &ShiftStore{client: client, ttl: ttl}
}

// Get returns the stored snapshot, or nil when none is stored.
func (s *ShiftStore) Get(ctx context.Context, driverID string) (*shift.Snapshot, error) {
	data, err := s.client.Get(ctx, shiftKeyPrefix+driverID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var snap shift.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save stores a snapshot and refreshes its TTL.
func (s *ShiftStore) Save(ctx context.Context, driverID string, snap *shift.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, shiftKeyPrefix+driverID, data, s.ttl).Err()
}

// Delete removes the stored snapshot.
func (s *ShiftStore) Delete(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, shiftKeyPrefix+driverID).Err()
}
