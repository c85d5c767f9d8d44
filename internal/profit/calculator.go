package profit

import (
	"rutaflow/internal/domain"
	"rutaflow/internal/numeric"
)

// Verdict classifies a trip against the driver's hourly target.
type Verdict string

const (
	VerdictGood       Verdict = "good"
	VerdictAcceptable Verdict = "acceptable"
	VerdictPoor       Verdict = "poor"
)

// Breakdown is the full profitability decomposition of one trip.
type Breakdown struct {
	DistanceKm  float64
	DurationMin float64
	Hours       float64

	Fare        float64
	PlatformFee float64
	FuelCost    float64
	FixedCost   float64
	Fixed       Amortization
	NetEarning  float64

	NetPerHour         float64
	NetPerKm           float64
	GrossMarginPercent float64

	Verdict Verdict
	// Score counts how many of the hourly and per-km targets were met (0-2).
	Score int
}

// Calculator computes Breakdowns under a fixed Policy.
type Calculator struct {
	policy Policy
}

// NewCalculator creates a new Calculator.
func NewCalculator(policy Policy) *Calculator {
	return &Calculator{policy: policy}
}

// Policy returns the calculator's policy.
func (c *Calculator) Policy() Policy {
	return c.policy
}

// Calculate decomposes a trip's fare into net earnings and derived rates.
// It never fails: missing or unusable inputs contribute zero.
func (c *Calculator) Calculate(t domain.Trip, s domain.Settings) Breakdown {
	distanceKm, durationMin := Resolve(t)
	fare := numeric.Finite(t.Fare)

	fuelCost := distanceKm / c.policy.kmPerLiter(numeric.Finite(s.KmPerLiter)) * numeric.Finite(s.FuelPricePerLiter)
	platformFee := fare * (numeric.Finite(s.CommissionPercent) / 100)
	fixed := Amortize(s, distanceKm, durationMin, c.policy)
	fixedCost := fixed.Total()
	net := fare - platformFee - fuelCost - fixedCost

	b := Breakdown{
		DistanceKm:  distanceKm,
		DurationMin: durationMin,
		Hours:       durationMin / 60,
		Fare:        fare,
		PlatformFee: platformFee,
		FuelCost:    fuelCost,
		FixedCost:   fixedCost,
		Fixed:       fixed,
		NetEarning:  net,
	}
	if b.Hours > 0 {
		b.NetPerHour = net / b.Hours
	}
	if distanceKm > 0 {
		b.NetPerKm = net / distanceKm
	}
	if fare > 0 {
		b.GrossMarginPercent = net / fare * 100
	}

	b.Verdict = c.Classify(b.NetPerHour, numeric.Finite(s.TargetHourlyRate))
	b.Score = Score(b, s)
	return b
}

// Classify compares an hourly rate with the target: at or above target is
// good, at or above AcceptableRatio of target is acceptable, anything else poor.
func (c *Calculator) Classify(netPerHour, targetHourly float64) Verdict {
	switch {
	case netPerHour >= targetHourly:
		return VerdictGood
	case netPerHour >= targetHourly*c.policy.AcceptableRatio:
		return VerdictAcceptable
	default:
		return VerdictPoor
	}
}

// Score awards one point for meeting the hourly target and one for meeting
// the per-km target.
func Score(b Breakdown, s domain.Settings) int {
	score := 0
	if b.NetPerHour >= numeric.Finite(s.TargetHourlyRate) {
		score++
	}
	if b.NetPerKm >= numeric.Finite(s.TargetPerKmRate) {
		score++
	}
	return score
}
