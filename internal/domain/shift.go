package domain

import "time"

// ShiftSession represents one working day.
type ShiftSession struct {
	ID        string
	DriverID  string
	Date      string // calendar date the shift started on, DateLayout
	StartedAt time.Time
	EndedAt   time.Time
	Running   bool
	GPSKm     float64 // odometer accumulated while running

	// Totals, computed when the shift ends.
	TotalNet  float64
	TotalKm   float64
	TripCount int
}

// ActiveTrip is an in-progress trip nested inside a running shift.
type ActiveTrip struct {
	ID        string
	Platform  Platform
	StartedAt time.Time
	GPSKm     float64
}
