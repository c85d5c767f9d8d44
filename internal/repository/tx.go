package repository

import "context"

// Repositories groups the repositories bound to one transaction.
type Repositories struct {
	Trips    TripRepository
	Shifts   ShiftRepository
	Settings SettingsRepository
	Drivers  DriverRepository
}

// Transactor runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
