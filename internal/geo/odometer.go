// Package geo turns a stream of GPS fixes into driven distance.
package geo

import (
	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"
)

// DefaultNoiseThresholdKm is the minimum movement between accepted fixes.
// Smaller jumps are treated as GPS jitter while idling.
const DefaultNoiseThresholdKm = 0.01

// Fix is a single position sample.
type Fix struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the fix has usable coordinates.
func (f Fix) Valid() bool {
	return f.Lat >= -90 && f.Lat <= 90 && f.Lng >= -180 && f.Lng <= 180
}

func (f Fix) point() orb.Point {
	return orb.Point{f.Lng, f.Lat}
}

// DistanceKm returns the great-circle distance between two fixes in kilometers.
func DistanceKm(a, b Fix) float64 {
	return orbgeo.DistanceHaversine(a.point(), b.point()) / 1000
}

// Odometer accumulates distance from fixes, discarding jitter.
// Fixes must be observed in arrival order.
type Odometer struct {
	ThresholdKm float64
	Last        *Fix
	TotalKm     float64
}

// NewOdometer creates an odometer with the given noise threshold.
// A non-positive threshold uses DefaultNoiseThresholdKm.
func NewOdometer(thresholdKm float64) *Odometer {
	if thresholdKm <= 0 {
		thresholdKm = DefaultNoiseThresholdKm
	}
	return &Odometer{ThresholdKm: thresholdKm}
}

// Accepts reports whether a movement of deltaKm counts as real movement.
func (o *Odometer) Accepts(deltaKm float64) bool {
	return deltaKm >= o.ThresholdKm
}

// Observe feeds a fix and returns the distance it contributed.
// The first fix only sets the reference point. A fix closer than the
// threshold to the last accepted fix is discarded and does not move the
// reference point.
func (o *Odometer) Observe(f Fix) float64 {
	if !f.Valid() {
		return 0
	}
	if o.Last == nil {
		last := f
		o.Last = &last
		return 0
	}
	d := DistanceKm(*o.Last, f)
	if !o.Accepts(d) {
		return 0
	}
	last := f
	o.Last = &last
	o.TotalKm += d
	return d
}

// Reset clears the reference point and the accumulated distance.
func (o *Odometer) Reset() {
	o.Last = nil
	o.TotalKm = 0
}
