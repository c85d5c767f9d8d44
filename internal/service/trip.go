package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"rutaflow/internal/domain"
	"rutaflow/internal/logger"
	"rutaflow/internal/numeric"
	"rutaflow/internal/profit"
	"rutaflow/internal/repository"
	"rutaflow/internal/stats"
)

// TripService handles trip logging and the per-trip profitability view.
type TripService struct {
	tripRepo            repository.TripRepository
	shiftRepo           repository.ShiftRepository
	settingsService     *SettingsService
	notificationService *NotificationService
	calc                *profit.Calculator
	loc                 *time.Location
	clock               func() time.Time
	log                 *logger.Logger
}

// NewTripService creates a new TripService. Trip dates are taken in loc.
func NewTripService(
	tripRepo repository.TripRepository,
	shiftRepo repository.ShiftRepository,
	settingsService *SettingsService,
	notificationService *NotificationService,
	calc *profit.Calculator,
	loc *time.Location,
	log *logger.Logger,
) *TripService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TripService{
		tripRepo:            tripRepo,
		shiftRepo:           shiftRepo,
		settingsService:     settingsService,
		notificationService: notificationService,
		calc:                calc,
		loc:                 loc,
		clock:               time.Now,
		log:                 log,
	}
}

// TripInput is a trip as entered by the driver, manually or from a photo.
// Negative or non-finite numbers are treated as zero.
type TripInput struct {
	Platform  string
	Source    string
	Fare      float64
	PickupKm  float64
	PickupMin float64
	DestKm    float64
	DestMin   float64
	GPSKm     float64
	GPSMin    float64
	Date      string
}

// TripView pairs a trip with its profitability breakdown.
type TripView struct {
	Trip      *domain.Trip
	Breakdown profit.Breakdown
}

// CreateTripResponse contains the saved trip.
type CreateTripResponse struct {
	TripView
	Notice *Notice
}

// draft builds an unsaved trip from input.
func (s *TripService) draft(driverID string, in TripInput) (*domain.Trip, error) {
	now := s.clock()

	date := in.Date
	if date == "" {
		date = now.In(s.loc).Format(domain.DateLayout)
	} else if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	trip := &domain.Trip{
		DriverID:  driverID,
		Platform:  domain.ParsePlatform(in.Platform),
		Source:    domain.MeasurementSource(in.Source),
		Fare:      numeric.NonNegative(in.Fare),
		PickupKm:  numeric.NonNegative(in.PickupKm),
		PickupMin: numeric.NonNegative(in.PickupMin),
		DestKm:    numeric.NonNegative(in.DestKm),
		DestMin:   numeric.NonNegative(in.DestMin),
		GPSKm:     numeric.NonNegative(in.GPSKm),
		GPSMin:    numeric.NonNegative(in.GPSMin),
		Date:      date,
		CreatedAt: now,
	}

	switch trip.Source {
	case domain.SourceManual, domain.SourceGPS, domain.SourcePhoto:
	default:
		trip.Source = domain.SourceManual
		if profit.UsesGPS(*trip) {
			trip.Source = domain.SourceGPS
		}
	}

	return trip, nil
}

// Preview computes the breakdown of an unsaved trip.
func (s *TripService) Preview(ctx context.Context, driverID string, in TripInput) (*TripView, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	trip, err := s.draft(driverID, in)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	return &TripView{Trip: trip, Breakdown: s.calc.Calculate(*trip, settings)}, nil
}

// Create saves a trip logged outside the shift tracker. If a shift is
// running the trip is linked to it.
func (s *TripService) Create(ctx context.Context, driverID string, in TripInput) (*CreateTripResponse, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	trip, err := s.draft(driverID, in)
	if err != nil {
		return nil, err
	}
	if trip.Fare <= 0 {
		return nil, ErrFareRequired
	}

	running, err := s.shiftRepo.GetRunningByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if running != nil {
		trip.ShiftID = running.ID
	}

	trip.ID = uuid.New().String()
	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}
	b := s.calc.Calculate(*trip, settings)

	s.log.WithDriverID(driverID).WithTripID(trip.ID).WithFields(map[string]any{
		"source":  trip.Source,
		"net":     b.NetEarning,
		"verdict": b.Verdict,
	}).Info("trip saved")

	resp := &CreateTripResponse{TripView: TripView{Trip: trip, Breakdown: b}}
	if s.notificationService != nil {
		resp.Notice = s.notificationService.TripSaved(ctx, trip, b)
	}
	return resp, nil
}

// Get returns one trip with its breakdown under the current settings.
func (s *TripService) Get(ctx context.Context, driverID, tripID string) (*TripView, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, driverID, tripID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	return &TripView{Trip: trip, Breakdown: s.calc.Calculate(*trip, settings)}, nil
}

// ListTripsRequest narrows a listing. Days limits to the trailing window.
type ListTripsRequest struct {
	Days  int
	Date  string
	Limit int
}

// List returns a driver's trips, newest first, with breakdowns.
func (s *TripService) List(ctx context.Context, driverID string, req ListTripsRequest) ([]TripView, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if req.Date != "" {
		if _, err := time.Parse(domain.DateLayout, req.Date); err != nil {
			return nil, ErrInvalidDate
		}
	}

	trips, err := s.tripRepo.ListByDriver(ctx, driverID, repository.TripFilter{
		Since: stats.Window(s.clock(), req.Days),
		Date:  req.Date,
		Limit: req.Limit,
	})
	if err != nil {
		return nil, err
	}

	settings, err := s.settingsService.Get(ctx, driverID)
	if err != nil {
		return nil, err
	}

	views := make([]TripView, 0, len(trips))
	for _, trip := range trips {
		views = append(views, TripView{Trip: trip, Breakdown: s.calc.Calculate(*trip, settings)})
	}
	return views, nil
}

// Delete removes a trip and returns a confirmation notice.
func (s *TripService) Delete(ctx context.Context, driverID, tripID string) (*Notice, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	if err := s.tripRepo.Delete(ctx, driverID, tripID); err != nil {
		return nil, err
	}

	s.log.WithDriverID(driverID).WithTripID(tripID).Info("trip deleted")

	if s.notificationService == nil {
		return nil, nil
	}
	return s.notificationService.TripDeleted(ctx, driverID, tripID), nil
}
