package domain

import "time"

// Driver is the owner of trips, shifts and settings.
type Driver struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}
