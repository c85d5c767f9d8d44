package service

import (
	"context"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/profit"
	"rutaflow/internal/repository"
	"rutaflow/internal/stats"
)

// StatsService computes aggregate statistics over a driver's trips.
type StatsService struct {
	tripRepo        repository.TripRepository
	shiftRepo       repository.ShiftRepository
	settingsService *SettingsService
	calc            *profit.Calculator
	loc             *time.Location
	defaultDays     int
	clock           func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	tripRepo repository.TripRepository,
	shiftRepo repository.ShiftRepository,
	settingsService *SettingsService,
	calc *profit.Calculator,
	loc *time.Location,
	defaultDays int,
) *StatsService {
	if loc == nil {
		loc = time.UTC
	}
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &StatsService{
		tripRepo:        tripRepo,
		shiftRepo:       shiftRepo,
		settingsService: settingsService,
		calc:            calc,
		loc:             loc,
		defaultDays:     defaultDays,
		clock:           time.Now,
	}
}

// Report aggregates the trailing window of days. Non-positive days use the
// configured default.
func (s *StatsService) Report(ctx context.Context, driverID string, days int) (*stats.Report, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if days <= 0 {
		days = s.defaultDays
	}

	since := stats.Window(s.clock(), days)
	trips, err := s.tripRepo.ListByDriver(ctx, driverID, repository.TripFilter{Since: since})
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	report := stats.Compute(stats.FilterSince(trips, since), settings, s.calc, s.loc)
	report.Since = since
	return &report, nil
}

// Days lists a driver's ended work days, most recent first.
func (s *StatsService) Days(ctx context.Context, driverID string, limit int) ([]*domain.ShiftSession, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	return s.shiftRepo.ListEnded(ctx, driverID, limit)
}
