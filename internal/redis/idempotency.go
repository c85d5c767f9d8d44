package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingMarker = "pending"

// StoredResponse is a completed response kept for replay.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// Reservation is the outcome of claiming an idempotency key.
type Reservation int

const (
	// Reserved means the caller owns the key and must Complete or Release it.
	Reserved Reservation = iota
	// InFlight means another request with the same key has not finished.
	InFlight
	// Completed means a stored response is available for replay.
	Completed
)

// IdempotencyStore remembers responses to mutating requests per driver and key.
type IdempotencyStore struct {
	client     *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyStore creates a new IdempotencyStore. Completed responses are
// kept for ttl; a reservation that is never completed expires after pendingTTL.
func NewIdempotencyStore(client *redis.Client, ttl, pendingTTL time.Duration) *IdempotencyStore {
	return &IdempotencyStore{client: client, ttl: ttl, pendingTTL: pendingTTL}
}

func idempotencyKey(driverID, key string) string {
	if driverID == "" {
		driverID = "anonymous"
	}
	return fmt.Sprintf("idempotency:%s:%s", driverID, key)
}

// Reserve claims the key for the caller, or reports why it cannot.
func (s *IdempotencyStore) Reserve(ctx context.Context, driverID, key string) (Reservation, *StoredResponse, error) {
	k := idempotencyKey(driverID, key)

	ok, err := s.client.SetNX(ctx, k, pendingMarker, s.pendingTTL).Result()
	if err != nil {
		return 0, nil, err
	}
	if ok {
		return Reserved, nil, nil
	}

	data, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// Expired between the two calls; the next attempt can claim it.
		return InFlight, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}
	if string(data) == pendingMarker {
		return InFlight, nil, nil
	}

	var resp StoredResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, nil, fmt.Errorf("failed to decode stored response: %w", err)
	}
	return Completed, &resp, nil
}

// Complete stores the response for replay.
func (s *IdempotencyStore) Complete(ctx context.Context, driverID, key string, resp *StoredResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, idempotencyKey(driverID, key), data, s.ttl).Err()
}

// Release drops a reservation so the request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, driverID, key string) error {
	return s.client.Del(ctx, idempotencyKey(driverID, key)).Err()
}
