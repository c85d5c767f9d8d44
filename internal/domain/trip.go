package domain

import "time"

// Platform identifies the ride-hailing app a trip was taken on.
type Platform string

const (
	PlatformUber  Platform = "uber"
	PlatformDidi  Platform = "didi"
	PlatformBeat  Platform = "beat"
	PlatformOther Platform = "otra"
)

// ParsePlatform normalizes a platform name. Unknown values map to PlatformOther,
// an empty value maps to PlatformUber.
func ParsePlatform(s string) Platform {
	switch Platform(s) {
	case PlatformUber, PlatformDidi, PlatformBeat, PlatformOther:
		return Platform(s)
	case "":
		return PlatformUber
	default:
		return PlatformOther
	}
}

// MeasurementSource records how a trip's distance and duration were captured.
type MeasurementSource string

const (
	SourceManual MeasurementSource = "manual"
	SourceGPS    MeasurementSource = "gps"
	SourcePhoto  MeasurementSource = "photo"
)

// DateLayout is the calendar-date format used for Trip.Date and ShiftSession.Date.
const DateLayout = "2006-01-02"

// Trip represents one completed ride. Trips are immutable once saved.
type Trip struct {
	ID       string
	DriverID string
	ShiftID  string // empty when logged outside a shift
	Platform Platform
	Source   MeasurementSource
	Fare     float64

	// Manual two-phase entry: driving to the pickup, then to the destination.
	PickupKm  float64
	PickupMin float64
	DestKm    float64
	DestMin   float64

	// Continuous GPS trace. Authoritative when GPSKm > 0.
	GPSKm  float64
	GPSMin float64

	Date      string // calendar date, DateLayout
	StartedAt time.Time
	EndedAt   time.Time
	CreatedAt time.Time
}
