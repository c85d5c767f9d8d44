package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LockStore handles distributed locking in Redis.
type LockStore struct {
	client *redis.Client
}

// NewLockStore creates a new LockStore.
func NewLockStore(client *redis.Client) *LockStore {
	return &LockStore{client: client}
}

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func shiftLockKey(driverID string) string {
	return fmt.Sprintf("lock:shift:%s", driverID)
}

// AcquireShiftLock attempts to take the lock guarding a driver's shift state.
// It returns the token needed to release it, or "" if the lock is held.
func (s *LockStore) AcquireShiftLock(ctx context.Context, driverID string, ttl time.Duration) (string, error) {
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, shiftLockKey(driverID), token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", nil
	}

	return token, nil
}

// ReleaseShiftLock releases the lock if token still owns it.
func (s *LockStore) ReleaseShiftLock(ctx context.Context, driverID, token string) error {
	return releaseScript.Run(ctx, s.client, []string{shiftLockKey(driverID)}, token).Err()
}
