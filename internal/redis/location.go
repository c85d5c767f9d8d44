package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const driverPositionKey = "drivers:positions"

// DriverPosition is the last reported position of a driver on shift.
type DriverPosition struct {
	DriverID string
	Lat      float64
	Lng      float64
}

// LocationStore keeps the last position of drivers on shift in a geo index.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdatePosition stores a driver's position using GEOADD.
func (s *LocationStore) UpdatePosition(ctx context.Context, driverID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, driverPositionKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// LastPosition returns the stored position, or nil if there is none.
func (s *LocationStore) LastPosition(ctx context.Context, driverID string) (*DriverPosition, error) {
	positions, err := s.client.GeoPos(ctx, driverPositionKey, driverID).Result()
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 || positions[0] == nil {
		return nil, nil
	}

	return &DriverPosition{
		DriverID: driverID,
		Lat:      positions[0].Latitude,
		Lng:      positions[0].Longitude,
	}, nil
}

// RemovePosition removes a driver from the geo index.
func (s *LocationStore) RemovePosition(ctx context.Context, driverID string) error {
	return s.client.ZRem(ctx, driverPositionKey, driverID).Err()
}
