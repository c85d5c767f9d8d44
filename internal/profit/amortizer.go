package profit

import (
	"rutaflow/internal/domain"
	"rutaflow/internal/numeric"
)

var periodDays = map[domain.Period]float64{
	domain.PeriodDaily:      1,
	domain.PeriodWeekly:     7,
	domain.PeriodMonthly:    30,
	domain.PeriodQuarterly:  90,
	domain.PeriodSemiannual: 180,
	domain.PeriodAnnual:     365,
}

// PeriodDays returns the number of days in a billing period, or fallback for
// an unknown period.
func PeriodDays(p domain.Period, fallback float64) float64 {
	if d, ok := periodDays[domain.ParsePeriod(string(p))]; ok {
		return d
	}
	return fallback
}

// Amortization is the per-item fixed cost charged to one trip.
type Amortization struct {
	VehiclePayment float64
	Insurance      float64
	MobileData     float64
	Tires          float64
	Maintenance    float64
}

// Total sums every item.
func (a Amortization) Total() float64 {
	return a.VehiclePayment + a.Insurance + a.MobileData + a.Tires + a.Maintenance
}

// Amortize returns the fixed cost a trip must carry.
//
// Time-based items become a daily rate (amount / days in period), which is
// spread over the policy's workday and multiplied by the trip's hours.
// Distance-based items cost amount / lifetime km per km driven. Disabled
// items, and wear items without a positive lifetime, contribute nothing.
func Amortize(s domain.Settings, distanceKm, durationMin float64, p Policy) Amortization {
	hours := numeric.Finite(durationMin) / 60
	km := numeric.Finite(distanceKm)

	return Amortization{
		VehiclePayment: periodicShare(s.VehiclePayment, hours, p),
		Insurance:      periodicShare(s.Insurance, hours, p),
		MobileData:     periodicShare(s.MobileData, hours, p),
		Tires:          wearShare(s.Tires, km),
		Maintenance:    wearShare(s.Maintenance, km),
	}
}

func periodicShare(c domain.PeriodicCost, hours float64, p Policy) float64 {
	if !c.Enabled {
		return 0
	}
	daily := numeric.Finite(c.Amount) / PeriodDays(c.Period, p.periodFallback())
	return daily / p.workdayHours() * hours
}

func wearShare(c domain.WearCost, km float64) float64 {
	lifetime := numeric.Finite(c.LifetimeKm)
	if !c.Enabled || lifetime <= 0 {
		return 0
	}
	return numeric.Finite(c.Amount) / lifetime * km
}
