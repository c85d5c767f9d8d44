package service

import (
	"context"
	"errors"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/geo"
	"rutaflow/internal/logger"
	"rutaflow/internal/profit"
	"rutaflow/internal/redis"
	"rutaflow/internal/repository"
	"rutaflow/internal/shift"
)

const (
	defaultShiftLockTTL     = 5 * time.Second
	defaultShiftLockRetries = 5
	defaultShiftLockBackoff = 50 * time.Millisecond
)

// ShiftService drives the work-day state machine for each driver. The
// running state lives in Redis between requests; Postgres holds the session
// row and saved trips. Every mutation runs under a per-driver lock.
type ShiftService struct {
	transactor          repository.Transactor
	shiftRepo           repository.ShiftRepository
	tripRepo            repository.TripRepository
	settingsService     *SettingsService
	notificationService *NotificationService
	store               redis.ShiftStoreInterface
	locks               redis.LockStoreInterface
	locations           redis.LocationStoreInterface
	calc                *profit.Calculator
	thresholdKm         float64
	clock               func() time.Time
	log                 *logger.Logger

	lockTTL     time.Duration
	lockRetries int
	lockBackoff time.Duration
}

// ShiftServiceDeps contains all dependencies needed by ShiftService.
// Locations may be nil.
type ShiftServiceDeps struct {
	Transactor          repository.Transactor
	ShiftRepo           repository.ShiftRepository
	TripRepo            repository.TripRepository
	SettingsService     *SettingsService
	NotificationService *NotificationService
	Store               redis.ShiftStoreInterface
	Locks               redis.LockStoreInterface
	Locations           redis.LocationStoreInterface
	Calculator          *profit.Calculator
	NoiseThresholdKm    float64
	Location            *time.Location
	Logger              *logger.Logger
}

// NewShiftService creates a new ShiftService.
func NewShiftService(deps ShiftServiceDeps) *ShiftService {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	threshold := deps.NoiseThresholdKm
	if threshold <= 0 {
		threshold = geo.DefaultNoiseThresholdKm
	}

	return &ShiftService{
		transactor:          deps.Transactor,
		shiftRepo:           deps.ShiftRepo,
		tripRepo:            deps.TripRepo,
		settingsService:     deps.SettingsService,
		notificationService: deps.NotificationService,
		store:               deps.Store,
		locks:               deps.Locks,
		locations:           deps.Locations,
		calc:                deps.Calculator,
		thresholdKm:         threshold,
		clock:               func() time.Time { return time.Now().In(loc) },
		log:                 log,
		lockTTL:             defaultShiftLockTTL,
		lockRetries:         defaultShiftLockRetries,
		lockBackoff:         defaultShiftLockBackoff,
	}
}

// WithClock replaces the wall clock, for tests.
func (s *ShiftService) WithClock(clock func() time.Time) *ShiftService {
	s.clock = clock
	return s
}

// ShiftView is the driver-facing state of the shift tracker.
type ShiftView struct {
	State       shift.State
	Session     *domain.ShiftSession
	ActiveTrip  *domain.ActiveTrip
	Elapsed     time.Duration
	TripElapsed time.Duration
	LastFix     *geo.Fix
}

// ShiftResult is returned by transitions. Applied is false when the
// transition was not valid in the current state and nothing changed.
type ShiftResult struct {
	ShiftView
	Applied bool
	Notice  *Notice
}

func viewOf(tr *shift.Tracker) ShiftView {
	return ShiftView{
		State:       tr.State(),
		Session:     tr.Session(),
		ActiveTrip:  tr.ActiveTrip(),
		Elapsed:     tr.Elapsed(),
		TripElapsed: tr.TripElapsed(),
		LastFix:     tr.LastFix(),
	}
}

// load rebuilds the driver's tracker from the Redis snapshot, falling back
// to the running session in Postgres when the snapshot is missing.
func (s *ShiftService) load(ctx context.Context, driverID string) (*shift.Tracker, error) {
	tr := shift.NewTracker(s.thresholdKm).WithClock(s.clock)

	snap, err := s.store.Get(ctx, driverID)
	if err != nil {
		s.log.WithDriverID(driverID).WithError(err).Warn("shift snapshot read failed, using database")
		snap = nil
	}
	if snap != nil {
		tr.Restore(snap)
		return tr, nil
	}

	running, err := s.shiftRepo.GetRunningByDriverID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	tr.RestoreSession(running)
	return tr, nil
}

func (s *ShiftService) save(ctx context.Context, driverID string, tr *shift.Tracker) error {
	snap := tr.Snapshot()
	if snap == nil {
		return s.store.Delete(ctx, driverID)
	}
	return s.store.Save(ctx, driverID, snap)
}

// withShiftLock runs fn while holding the driver's shift lock, retrying
// briefly if another request holds it.
func (s *ShiftService) withShiftLock(ctx context.Context, driverID string, fn func() error) error {
	for attempt := 0; attempt <= s.lockRetries; attempt++ {
		token, err := s.locks.AcquireShiftLock(ctx, driverID, s.lockTTL)
		if err != nil {
			return err
		}
		if token != "" {
			defer func() {
				if err := s.locks.ReleaseShiftLock(context.WithoutCancel(ctx), driverID, token); err != nil {
					s.log.WithDriverID(driverID).WithError(err).Warn("shift lock release failed")
				}
			}()
			return fn()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.lockBackoff):
		}
	}
	return ErrShiftBusy
}

// State returns the current shift state without changing it.
func (s *ShiftService) State(ctx context.Context, driverID string) (*ShiftView, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	tr, err := s.load(ctx, driverID)
	if err != nil {
		return nil, err
	}
	view := viewOf(tr)
	return &view, nil
}

// Start opens a new work day. Starting while a day is running changes nothing.
func (s *ShiftService) Start(ctx context.Context, driverID string) (*ShiftResult, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var result ShiftResult
	err := s.withShiftLock(ctx, driverID, func() error {
		tr, err := s.load(ctx, driverID)
		if err != nil {
			return err
		}

		if !tr.Start(driverID) {
			result.ShiftView = viewOf(tr)
			return nil
		}

		session := tr.Session()
		if err := s.shiftRepo.Create(ctx, session); err != nil {
			return err
		}
		if err := s.save(ctx, driverID, tr); err != nil {
			return err
		}

		s.log.LogShiftEvent(driverID, session.ID, "started", nil)

		result.ShiftView = viewOf(tr)
		result.Applied = true
		if s.notificationService != nil {
			result.Notice = s.notificationService.ShiftStarted(ctx, session)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PositionUpdate is one sample from the device. Exactly one of Fix, DeltaKm
// or ErrorCode is expected; a Fix takes precedence over DeltaKm.
type PositionUpdate struct {
	Fix       *geo.Fix
	DeltaKm   *float64
	ErrorCode geo.ErrorCode
}

// PositionResult reports the outcome of a position sample.
type PositionResult struct {
	ShiftResult
	AddedKm float64
	Status  string
}

// RecordPosition feeds a GPS sample into the running shift. Samples while
// idle, and device errors, change nothing.
func (s *ShiftService) RecordPosition(ctx context.Context, driverID string, update PositionUpdate) (*PositionResult, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}
	if update.Fix != nil && !update.Fix.Valid() {
		return nil, ErrInvalidLocation
	}

	if update.ErrorCode != "" {
		view, err := s.State(ctx, driverID)
		if err != nil {
			return nil, err
		}
		result := &PositionResult{
			ShiftResult: ShiftResult{ShiftView: *view},
			Status:      geo.StatusForError(update.ErrorCode),
		}
		if s.notificationService != nil {
			result.Notice = s.notificationService.GPSStatus(ctx, driverID, result.Status)
		}
		return result, nil
	}

	var result PositionResult
	err := s.withShiftLock(ctx, driverID, func() error {
		tr, err := s.load(ctx, driverID)
		if err != nil {
			return err
		}

		if tr.State() != shift.StateRunning {
			result.ShiftView = viewOf(tr)
			result.Status = geo.StatusSearching
			return nil
		}

		before := tr.Session().GPSKm
		switch {
		case update.Fix != nil:
			tr.RecordFix(*update.Fix)
			if s.locations != nil {
				if err := s.locations.UpdatePosition(ctx, driverID, update.Fix.Lat, update.Fix.Lng); err != nil {
					s.log.WithDriverID(driverID).WithError(err).Warn("position index update failed")
				}
			}
		case update.DeltaKm != nil:
			tr.RecordDistanceDelta(*update.DeltaKm)
		}

		if err := s.save(ctx, driverID, tr); err != nil {
			return err
		}

		session := tr.Session()
		result.ShiftView = viewOf(tr)
		result.AddedKm = session.GPSKm - before
		result.Applied = result.AddedKm > 0 || update.Fix != nil
		result.Status = geo.StatusForDistance(session.GPSKm)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// StartTrip opens an active trip inside the running shift.
func (s *ShiftService) StartTrip(ctx context.Context, driverID, platform string) (*ShiftResult, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var result ShiftResult
	err := s.withShiftLock(ctx, driverID, func() error {
		tr, err := s.load(ctx, driverID)
		if err != nil {
			return err
		}

		if !tr.StartTrip(domain.ParsePlatform(platform)) {
			result.ShiftView = viewOf(tr)
			return nil
		}
		if err := s.save(ctx, driverID, tr); err != nil {
			return err
		}

		result.ShiftView = viewOf(tr)
		result.Applied = true
		if s.notificationService != nil {
			result.Notice = s.notificationService.TripStarted(ctx, driverID, result.ActiveTrip)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EndTripInput is what the driver enters when closing the active trip.
type EndTripInput struct {
	Fare      float64
	Platform  string
	PickupKm  float64
	PickupMin float64
	DestKm    float64
	DestMin   float64
}

// EndTripResult contains the saved trip, if the transition applied.
type EndTripResult struct {
	ShiftResult
	Trip *TripView
}

// EndTrip closes the active trip and saves it linked to the shift. If saving
// fails the trip stays active so the driver can retry. Once the trip is
// committed, a snapshot failure is only logged.
func (s *ShiftService) EndTrip(ctx context.Context, driverID string, in EndTripInput) (*EndTripResult, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var result EndTripResult
	err := s.withShiftLock(ctx, driverID, func() error {
		tr, err := s.load(ctx, driverID)
		if err != nil {
			return err
		}

		if tr.ActiveTrip() == nil {
			result.ShiftView = viewOf(tr)
			return nil
		}
		if in.Fare <= 0 {
			return ErrFareRequired
		}
		settings, err := s.settingsService.Get(ctx, driverID)
		if err != nil {
			return err
		}

		draft := shift.TripDraft{
			Fare:      in.Fare,
			PickupKm:  in.PickupKm,
			PickupMin: in.PickupMin,
			DestKm:    in.DestKm,
			DestMin:   in.DestMin,
		}
		if in.Platform != "" {
			draft.Platform = domain.ParsePlatform(in.Platform)
		}

		trip, _ := tr.EndTrip(draft)
		session := tr.Session()

		err = s.transactor.WithinTx(ctx, func(repos repository.Repositories) error {
			saved, err := repos.Trips.GetByID(ctx, driverID, trip.ID)
			switch {
			case err == nil:
				// Committed by an earlier attempt whose snapshot was not cleared.
				trip = saved
			case errors.Is(err, repository.ErrNotFound):
				if err := repos.Trips.Create(ctx, trip); err != nil {
					return err
				}
			default:
				return err
			}
			return repos.Shifts.Update(ctx, session)
		})
		if err != nil {
			return err
		}
		s.persistAfterCommit(ctx, driverID, tr)

		b := s.calc.Calculate(*trip, settings)

		s.log.WithDriverID(driverID).WithShiftID(session.ID).WithTripID(trip.ID).WithFields(map[string]any{
			"gps_km":  trip.GPSKm,
			"net":     b.NetEarning,
			"verdict": b.Verdict,
		}).Info("shift trip saved")

		result.ShiftView = viewOf(tr)
		result.Applied = true
		result.Trip = &TripView{Trip: trip, Breakdown: b}
		if s.notificationService != nil {
			result.Notice = s.notificationService.TripSaved(ctx, trip, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// persistAfterCommit stores the snapshot once Postgres already holds the
// change. If the save fails the stale snapshot is dropped so the next load
// rebuilds from the session row.
func (s *ShiftService) persistAfterCommit(ctx context.Context, driverID string, tr *shift.Tracker) {
	err := s.save(ctx, driverID, tr)
	if err == nil {
		return
	}
	log := s.log.WithDriverID(driverID).WithError(err)
	log.Warn("shift snapshot save failed after commit")
	if err := s.store.Delete(ctx, driverID); err != nil {
		log.WithField("delete_error", err.Error()).Warn("stale shift snapshot left in place")
	}
}

// EndShiftResult contains the ended session with its totals.
type EndShiftResult struct {
	ShiftResult
	Ended *domain.ShiftSession
}

// End closes the running day and stores its totals. An active trip is
// discarded.
func (s *ShiftService) End(ctx context.Context, driverID string) (*EndShiftResult, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	var result EndShiftResult
	err := s.withShiftLock(ctx, driverID, func() error {
		tr, err := s.load(ctx, driverID)
		if err != nil {
			return err
		}

		session := tr.Session()
		if session == nil {
			result.ShiftView = viewOf(tr)
			return nil
		}

		trips, err := s.sessionTrips(ctx, session)
		if err != nil {
			return err
		}
		settings, err := s.settingsService.Get(ctx, driverID)
		if err != nil {
			return err
		}

		ended, _ := tr.End(trips, settings, s.calc)
		err = s.transactor.WithinTx(ctx, func(repos repository.Repositories) error {
			return repos.Shifts.Update(ctx, ended)
		})
		if err != nil {
			return err
		}

		if err := s.store.Delete(ctx, driverID); err != nil {
			// A surviving snapshot would bring the ended day back as running.
			s.log.WithDriverID(driverID).WithError(err).Warn("shift snapshot delete failed")
			return err
		}
		if s.locations != nil {
			if err := s.locations.RemovePosition(ctx, driverID); err != nil {
				s.log.WithDriverID(driverID).WithError(err).Warn("position index removal failed")
			}
		}

		s.log.LogShiftEvent(driverID, ended.ID, "ended", map[string]any{
			"trip_count": ended.TripCount,
			"total_net":  ended.TotalNet,
			"total_km":   ended.TotalKm,
			"gps_km":     ended.GPSKm,
		})

		result.ShiftView = viewOf(tr)
		result.Applied = true
		result.Ended = ended
		if s.notificationService != nil {
			result.Notice = s.notificationService.ShiftEnded(ctx, ended)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// sessionTrips returns the trips linked to the session plus the unlinked
// trips logged on its date.
func (s *ShiftService) sessionTrips(ctx context.Context, session *domain.ShiftSession) ([]*domain.Trip, error) {
	byDate, err := s.tripRepo.ListByDriver(ctx, session.DriverID, repository.TripFilter{Date: session.Date})
	if err != nil {
		return nil, err
	}
	linked, err := s.tripRepo.ListByDriver(ctx, session.DriverID, repository.TripFilter{ShiftID: session.ID})
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(byDate)+len(linked))
	trips := make([]*domain.Trip, 0, len(byDate)+len(linked))
	for _, t := range append(byDate, linked...) {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		trips = append(trips, t)
	}
	return trips, nil
}
