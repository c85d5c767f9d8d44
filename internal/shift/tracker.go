// Package shift implements the work-day state machine: idle, then running
// with at most one active trip, then idle again once the day is ended.
//
// Invalid transitions are not errors. They leave the tracker untouched and
// report false, so a double tap on "start day" is harmless.
package shift

import (
	"time"

	"github.com/google/uuid"

	"rutaflow/internal/domain"
	"rutaflow/internal/geo"
	"rutaflow/internal/numeric"
	"rutaflow/internal/profit"
)

// State is the tracker's top-level state.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
)

// Tracker holds one driver's shift state. It is not safe for concurrent use;
// callers serialize access per driver.
type Tracker struct {
	clock    func() time.Time
	newID    func() string
	odometer *geo.Odometer
	session  *domain.ShiftSession
	trip     *domain.ActiveTrip
}

// NewTracker creates an idle tracker using the given GPS noise threshold.
func NewTracker(thresholdKm float64) *Tracker {
	return &Tracker{
		clock:    time.Now,
		newID:    func() string { return uuid.New().String() },
		odometer: geo.NewOdometer(thresholdKm),
	}
}

// WithClock replaces the wall clock, for tests.
func (t *Tracker) WithClock(clock func() time.Time) *Tracker {
	t.clock = clock
	return t
}

// State returns the current state.
func (t *Tracker) State() State {
	if t.session != nil && t.session.Running {
		return StateRunning
	}
	return StateIdle
}

// Session returns a copy of the running session, or nil when idle.
func (t *Tracker) Session() *domain.ShiftSession {
	if t.session == nil {
		return nil
	}
	s := *t.session
	return &s
}

// ActiveTrip returns a copy of the active trip, or nil.
func (t *Tracker) ActiveTrip() *domain.ActiveTrip {
	if t.trip == nil {
		return nil
	}
	a := *t.trip
	return &a
}

// Start opens a new session. It is a no-op while a session is running.
func (t *Tracker) Start(driverID string) bool {
	if t.State() == StateRunning {
		return false
	}
	now := t.clock()
	t.session = &domain.ShiftSession{
		ID:        t.newID(),
		DriverID:  driverID,
		Date:      now.Format(domain.DateLayout),
		StartedAt: now,
		Running:   true,
	}
	t.trip = nil
	t.odometer.Reset()
	return true
}

// RecordDistanceDelta adds a movement to the session and to the active trip
// when it is at least the noise threshold. It is a no-op while idle.
func (t *Tracker) RecordDistanceDelta(deltaKm float64) bool {
	if t.State() != StateRunning {
		return false
	}
	deltaKm = numeric.NonNegative(deltaKm)
	if !t.odometer.Accepts(deltaKm) {
		return false
	}
	t.session.GPSKm += deltaKm
	if t.trip != nil {
		t.trip.GPSKm += deltaKm
	}
	return true
}

// RecordFix feeds a position sample and returns the distance it added.
func (t *Tracker) RecordFix(f geo.Fix) float64 {
	if t.State() != StateRunning {
		return 0
	}
	d := t.odometer.Observe(f)
	if d > 0 {
		t.RecordDistanceDelta(d)
	}
	return d
}

// LastFix returns the last accepted position, if any.
func (t *Tracker) LastFix() *geo.Fix {
	if t.odometer.Last == nil {
		return nil
	}
	f := *t.odometer.Last
	return &f
}

// StartTrip opens a trip inside the running session. Only one trip may be
// active at a time.
func (t *Tracker) StartTrip(platform domain.Platform) bool {
	if t.State() != StateRunning || t.trip != nil {
		return false
	}
	t.trip = &domain.ActiveTrip{
		ID:        t.newID(),
		Platform:  platform,
		StartedAt: t.clock(),
	}
	return true
}

// TripDraft carries what the driver enters when closing an active trip.
// Manual distances only matter when the GPS trace stayed at zero.
type TripDraft struct {
	Fare      float64
	Platform  domain.Platform
	PickupKm  float64
	PickupMin float64
	DestKm    float64
	DestMin   float64
}

// EndTrip finalizes the active trip into a Trip linked to the session.
func (t *Tracker) EndTrip(draft TripDraft) (*domain.Trip, bool) {
	if t.State() != StateRunning || t.trip == nil {
		return nil, false
	}
	now := t.clock()
	platform := t.trip.Platform
	if draft.Platform != "" {
		platform = draft.Platform
	}

	trip := &domain.Trip{
		ID:        t.trip.ID,
		DriverID:  t.session.DriverID,
		ShiftID:   t.session.ID,
		Platform:  platform,
		Source:    domain.SourceGPS,
		Fare:      numeric.NonNegative(draft.Fare),
		PickupKm:  numeric.NonNegative(draft.PickupKm),
		PickupMin: numeric.NonNegative(draft.PickupMin),
		DestKm:    numeric.NonNegative(draft.DestKm),
		DestMin:   numeric.NonNegative(draft.DestMin),
		GPSKm:     numeric.Round(t.trip.GPSKm, 2),
		GPSMin:    numeric.Round(now.Sub(t.trip.StartedAt).Minutes(), 1),
		Date:      now.Format(domain.DateLayout),
		StartedAt: t.trip.StartedAt,
		EndedAt:   now,
		CreatedAt: now,
	}
	if trip.GPSKm <= 0 {
		trip.Source = domain.SourceManual
	}
	t.trip = nil
	return trip, true
}

// End closes the session, computing totals over the trips that belong to it,
// and returns the ended session. Any active trip is discarded.
func (t *Tracker) End(trips []*domain.Trip, settings domain.Settings, calc *profit.Calculator) (*domain.ShiftSession, bool) {
	if t.State() != StateRunning {
		return nil, false
	}
	ended := *t.session
	ended.Running = false
	ended.EndedAt = t.clock()
	ended.TotalNet, ended.TotalKm, ended.TripCount = Totals(&ended, trips, settings, calc)

	t.session = nil
	t.trip = nil
	t.odometer.Reset()
	return &ended, true
}

// Belongs reports whether a trip counts towards a session: either it is
// linked to the session, or it is unlinked and was logged on the session's date.
func Belongs(s *domain.ShiftSession, trip *domain.Trip) bool {
	if trip.ShiftID != "" {
		return trip.ShiftID == s.ID
	}
	return trip.Date == s.Date
}

// Totals sums net earnings and distance over the trips belonging to a session.
func Totals(s *domain.ShiftSession, trips []*domain.Trip, settings domain.Settings, calc *profit.Calculator) (net, km float64, count int) {
	for _, trip := range trips {
		if trip == nil || !Belongs(s, trip) {
			continue
		}
		b := calc.Calculate(*trip, settings)
		net += b.NetEarning
		km += b.DistanceKm
		count++
	}
	return net, km, count
}

// Elapsed returns the running time of the session, always computed from the
// start time so a missed display tick corrects itself.
func (t *Tracker) Elapsed() time.Duration {
	if t.State() != StateRunning {
		return 0
	}
	return t.clock().Sub(t.session.StartedAt)
}

// TripElapsed returns the running time of the active trip.
func (t *Tracker) TripElapsed() time.Duration {
	if t.trip == nil {
		return 0
	}
	return t.clock().Sub(t.trip.StartedAt)
}
