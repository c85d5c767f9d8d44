package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"rutaflow/internal/domain"
)

// CacheStore caches per-driver settings in Redis.
type CacheStore struct {
	client *redis.Client
	ttl    time.Duration
}

// DefaultSettingsCacheTTL is used when NewCacheStore gets a non-positive TTL.
const DefaultSettingsCacheTTL = 10 * time.Minute

const settingsCachePrefix = "cache:settings:"

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client, ttl time.Duration) *CacheStore {
	if ttl <= 0 {
		ttl = DefaultSettingsCacheTTL
	}
	return &CacheStore{client: client, ttl: ttl}
}

// GetSettings retrieves a driver's settings. It returns nil on a cache miss.
func (s *CacheStore) GetSettings(ctx context.Context, driverID string) (*domain.Settings, error) {
	data, err := s.client.Get(ctx, settingsCachePrefix+driverID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var settings domain.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// SetSettings stores a driver's settings.
func (s *CacheStore) SetSettings(ctx context.Context, driverID string, settings *domain.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, settingsCachePrefix+driverID, data, s.ttl).Err()
}

// InvalidateSettings removes a driver's settings from cache.
func (s *CacheStore) InvalidateSettings(ctx context.Context, driverID string) error {
	return s.client.Del(ctx, settingsCachePrefix+driverID).Err()
}
