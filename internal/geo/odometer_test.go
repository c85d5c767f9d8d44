package geo

import (
	"math"
	"testing"
)

var origin = Fix{Lat: 19.4326, Lng: -99.1332}

// north moves a fix the given number of meters along the meridian.
func north(f Fix, meters float64) Fix {
	return Fix{Lat: f.Lat + meters/111195.0, Lng: f.Lng}
}

func TestDistanceKm(t *testing.T) {
	t.Parallel()

	// Mexico City Zócalo to Ángel de la Independencia is about 3.7 km.
	angel := Fix{Lat: 19.4270, Lng: -99.1677}
	d := DistanceKm(origin, angel)
	if d < 3.2 || d > 3.8 {
		t.Errorf("expected ~3.7 km, got %.3f", d)
	}

	if got := DistanceKm(origin, origin); got != 0 {
		t.Errorf("expected zero distance for identical fixes, got %v", got)
	}
}

func TestOdometer_FirstFixSetsReference(t *testing.T) {
	t.Parallel()

	o := NewOdometer(0.01)
	if d := o.Observe(origin); d != 0 {
		t.Errorf("expected first fix to contribute 0, got %v", d)
	}
	if o.Last == nil || *o.Last != origin {
		t.Errorf("expected reference point to be set, got %+v", o.Last)
	}
}

func TestOdometer_DiscardsJitter(t *testing.T) {
	t.Parallel()

	o := NewOdometer(0.01)
	o.Observe(origin)

	// Three 4 m wiggles: each below 10 m from the reference, none accepted.
	for i := 0; i < 3; i++ {
		if d := o.Observe(north(origin, 4)); d != 0 {
			t.Errorf("expected jitter to be discarded, got %v", d)
		}
	}
	if o.TotalKm != 0 {
		t.Errorf("expected no accumulated distance, got %v", o.TotalKm)
	}
	if *o.Last != origin {
		t.Error("expected reference point to stay on the last accepted fix")
	}

	// Real movement of 50 m is accepted.
	d := o.Observe(north(origin, 50))
	if math.Abs(d-0.05) > 0.001 {
		t.Errorf("expected ~0.05 km, got %v", d)
	}
}

func TestOdometer_SlowDriftIsMeasuredFromLastAcceptedFix(t *testing.T) {
	t.Parallel()

	o := NewOdometer(0.01)
	o.Observe(origin)

	// 6 m steps: each is below the threshold from the previous sample, but the
	// second one is 12 m from the last accepted fix and counts.
	o.Observe(north(origin, 6))
	d := o.Observe(north(origin, 12))
	if math.Abs(d-0.012) > 0.0005 {
		t.Errorf("expected ~0.012 km, got %v", d)
	}
}

func TestOdometer_IgnoresInvalidFixes(t *testing.T) {
	t.Parallel()

	o := NewOdometer(0)
	if o.ThresholdKm != DefaultNoiseThresholdKm {
		t.Errorf("expected default threshold, got %v", o.ThresholdKm)
	}
	o.Observe(Fix{Lat: 120, Lng: 0})
	if o.Last != nil {
		t.Error("expected invalid fix to be ignored")
	}
}

func TestOdometer_AcceptsIsInclusive(t *testing.T) {
	t.Parallel()

	o := NewOdometer(0.01)
	if !o.Accepts(0.01) {
		t.Error("expected delta equal to threshold to be accepted")
	}
	if o.Accepts(0.0099) {
		t.Error("expected delta below threshold to be rejected")
	}
}

func TestStatusForError(t *testing.T) {
	t.Parallel()

	for _, code := range []ErrorCode{ErrorPermissionDenied, ErrorTimeout, ErrorUnavailable, ErrorUnsupported, "weird"} {
		if StatusForError(code) == "" {
			t.Errorf("expected a status for %q", code)
		}
	}
	if got := StatusForDistance(1.234); got != "1.23 km" {
		t.Errorf("unexpected distance status %q", got)
	}
}
