package profit

import (
	"rutaflow/internal/domain"
	"rutaflow/internal/numeric"
)

// Resolve returns the authoritative distance (km) and duration (minutes) of a trip.
//
// A positive GPS distance wins outright: the GPS pair is returned and the
// manual phase fields are ignored. Otherwise the pickup and destination
// phases are summed. Non-finite fields count as zero.
func Resolve(t domain.Trip) (distanceKm, durationMin float64) {
	gpsKm := numeric.Finite(t.GPSKm)
	if gpsKm > 0 {
		return gpsKm, numeric.Finite(t.GPSMin)
	}

	distanceKm = numeric.Finite(t.PickupKm) + numeric.Finite(t.DestKm)
	durationMin = numeric.Finite(t.PickupMin) + numeric.Finite(t.DestMin)
	return distanceKm, durationMin
}

// UsesGPS reports whether Resolve takes its values from the GPS trace.
func UsesGPS(t domain.Trip) bool {
	return numeric.Finite(t.GPSKm) > 0
}
