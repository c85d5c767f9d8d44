package domain

import "rutaflow/internal/numeric"

// Period is the billing period of a time-based fixed cost.
type Period string

const (
	PeriodDaily      Period = "daily"
	PeriodWeekly     Period = "weekly"
	PeriodMonthly    Period = "monthly"
	PeriodQuarterly  Period = "quarterly"
	PeriodSemiannual Period = "semiannual"
	PeriodAnnual     Period = "annual"
)

var periodAliases = map[string]Period{
	"diario":     PeriodDaily,
	"semanal":    PeriodWeekly,
	"mensual":    PeriodMonthly,
	"trimestral": PeriodQuarterly,
	"semestral":  PeriodSemiannual,
	"anual":      PeriodAnnual,
}

// ParsePeriod accepts English or Spanish period names. Unknown names are
// returned unchanged; the amortizer treats them as a 30-day period.
func ParsePeriod(s string) Period {
	if p, ok := periodAliases[s]; ok {
		return p
	}
	return Period(s)
}

// PeriodicCost is a fixed cost billed per period (vehicle payment, insurance, mobile data).
type PeriodicCost struct {
	Enabled bool    `json:"enabled"`
	Amount  float64 `json:"amount"`
	Period  Period  `json:"period"`
}

// WearCost is a cost consumed by distance driven (tires, maintenance).
type WearCost struct {
	Enabled    bool    `json:"enabled"`
	Amount     float64 `json:"amount"`
	LifetimeKm float64 `json:"lifetime_km"`
}

// Settings holds a driver's economic parameters.
type Settings struct {
	FuelPricePerLiter float64 `json:"fuel_price_per_liter"`
	KmPerLiter        float64 `json:"km_per_liter"`
	TargetHourlyRate  float64 `json:"target_hourly_rate"`
	TargetPerKmRate   float64 `json:"target_per_km_rate"`
	CommissionPercent float64 `json:"commission_percent"`

	VehiclePayment PeriodicCost `json:"vehicle_payment"`
	Insurance      PeriodicCost `json:"insurance"`
	MobileData     PeriodicCost `json:"mobile_data"`
	Tires          WearCost     `json:"tires"`
	Maintenance    WearCost     `json:"maintenance"`
}

// DefaultSettings returns the settings a new driver starts with.
func DefaultSettings() Settings {
	return Settings{
		FuelPricePerLiter: 24,
		KmPerLiter:        12,
		TargetHourlyRate:  200,
		TargetPerKmRate:   8,
		CommissionPercent: 10,
		VehiclePayment:    PeriodicCost{Period: PeriodMonthly},
		Insurance:         PeriodicCost{Period: PeriodMonthly},
		MobileData:        PeriodicCost{Period: PeriodMonthly},
		Tires:             WearCost{LifetimeKm: 40000},
		Maintenance:       WearCost{LifetimeKm: 5000},
	}
}

// PeriodicCosts returns the time-based items in a fixed order.
func (s Settings) PeriodicCosts() []PeriodicCost {
	return []PeriodicCost{s.VehiclePayment, s.Insurance, s.MobileData}
}

// WearCosts returns the distance-based items in a fixed order.
func (s Settings) WearCosts() []WearCost {
	return []WearCost{s.Tires, s.Maintenance}
}

// Normalized clamps negative or non-finite amounts to zero and maps Spanish
// period names to their canonical form. Lifetimes of zero are kept; the
// amortizer treats them as contributing nothing.
func (s Settings) Normalized() Settings {
	s.FuelPricePerLiter = numeric.NonNegative(s.FuelPricePerLiter)
	s.KmPerLiter = numeric.NonNegative(s.KmPerLiter)
	s.TargetHourlyRate = numeric.NonNegative(s.TargetHourlyRate)
	s.TargetPerKmRate = numeric.NonNegative(s.TargetPerKmRate)
	s.CommissionPercent = numeric.NonNegative(s.CommissionPercent)

	s.VehiclePayment = s.VehiclePayment.normalized()
	s.Insurance = s.Insurance.normalized()
	s.MobileData = s.MobileData.normalized()
	s.Tires = s.Tires.normalized()
	s.Maintenance = s.Maintenance.normalized()
	return s
}

func (c PeriodicCost) normalized() PeriodicCost {
	c.Amount = numeric.NonNegative(c.Amount)
	c.Period = ParsePeriod(string(c.Period))
	if c.Period == "" {
		c.Period = PeriodMonthly
	}
	return c
}

func (c WearCost) normalized() WearCost {
	c.Amount = numeric.NonNegative(c.Amount)
	c.LifetimeKm = numeric.NonNegative(c.LifetimeKm)
	return c
}
