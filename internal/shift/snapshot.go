package shift

import (
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/geo"
)

// Snapshot is the serializable form of a Tracker, stored between requests.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	DriverID  string    `json:"driver_id"`
	Date      string    `json:"date"`
	StartedAt time.Time `json:"started_at"`
	GPSKm     float64   `json:"gps_km"`
	LastFix   *geo.Fix  `json:"last_fix,omitempty"`

	Trip *TripSnapshot `json:"trip,omitempty"`
}

// TripSnapshot is the serializable form of an ActiveTrip.
type TripSnapshot struct {
	ID        string    `json:"id"`
	Platform  string    `json:"platform"`
	StartedAt time.Time `json:"started_at"`
	GPSKm     float64   `json:"gps_km"`
}

// Snapshot captures the running state. It returns nil when idle.
func (t *Tracker) Snapshot() *Snapshot {
	if t.State() != StateRunning {
		return nil
	}
	snap := &Snapshot{
		SessionID: t.session.ID,
		DriverID:  t.session.DriverID,
		Date:      t.session.Date,
		StartedAt: t.session.StartedAt,
		GPSKm:     t.session.GPSKm,
		LastFix:   t.LastFix(),
	}
	if t.trip != nil {
		snap.Trip = &TripSnapshot{
			ID:        t.trip.ID,
			Platform:  string(t.trip.Platform),
			StartedAt: t.trip.StartedAt,
			GPSKm:     t.trip.GPSKm,
		}
	}
	return snap
}

// Restore replaces the tracker state with a snapshot. A nil snapshot
// leaves the tracker idle.
func (t *Tracker) Restore(snap *Snapshot) {
	t.session = nil
	t.trip = nil
	t.odometer.Reset()
	if snap == nil {
		return
	}
	t.session = &domain.ShiftSession{
		ID:        snap.SessionID,
		DriverID:  snap.DriverID,
		Date:      snap.Date,
		StartedAt: snap.StartedAt,
		GPSKm:     snap.GPSKm,
		Running:   true,
	}
	if snap.LastFix != nil {
		f := *snap.LastFix
		t.odometer.Last = &f
	}
	if snap.Trip != nil {
		t.trip = &domain.ActiveTrip{
			ID:        snap.Trip.ID,
			Platform:  domain.Platform(snap.Trip.Platform),
			StartedAt: snap.Trip.StartedAt,
			GPSKm:     snap.Trip.GPSKm,
		}
	}
}

// RestoreSession resumes a running session loaded from durable storage,
// without trip or position state.
func (t *Tracker) RestoreSession(s *domain.ShiftSession) {
	if s == nil || !s.Running {
		t.Restore(nil)
		return
	}
	t.Restore(&Snapshot{
		SessionID: s.ID,
		DriverID:  s.DriverID,
		Date:      s.Date,
		StartedAt: s.StartedAt,
		GPSKm:     s.GPSKm,
	})
}
