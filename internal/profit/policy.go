// Package profit turns a trip and a driver's settings into net earnings.
//
// Every function here is pure: no I/O, no clocks, no shared state. Inputs are
// expected to be already coerced to finite numbers at the boundary; the
// functions still guard each division so a zero divisor yields zero instead
// of NaN or ±Inf.
package profit

// Policy holds the calculation constants that differed between earlier
// versions of the app. They are explicit parameters rather than literals.
type Policy struct {
	// AcceptableRatio is the fraction of the hourly target at or above which
	// a trip is classified as acceptable rather than poor.
	AcceptableRatio float64

	// WorkdayHours is the notional length of a working day used to spread a
	// daily fixed cost over the hours actually driven.
	WorkdayHours float64

	// DefaultPeriodDays is used for fixed costs whose period is unknown.
	DefaultPeriodDays float64

	// DefaultKmPerLiter replaces a non-positive fuel efficiency.
	DefaultKmPerLiter float64
}

// DefaultPolicy returns the canonical calculation policy.
func DefaultPolicy() Policy {
	return Policy{
		AcceptableRatio:   0.75,
		WorkdayHours:      8,
		DefaultPeriodDays: 30,
		DefaultKmPerLiter: 12,
	}
}

func (p Policy) workdayHours() float64 {
	if p.WorkdayHours <= 0 {
		return 8
	}
	return p.WorkdayHours
}

func (p Policy) periodFallback() float64 {
	if p.DefaultPeriodDays <= 0 {
		return 30
	}
	return p.DefaultPeriodDays
}

func (p Policy) kmPerLiter(configured float64) float64 {
	if configured > 0 {
		return configured
	}
	if p.DefaultKmPerLiter > 0 {
		return p.DefaultKmPerLiter
	}
	return 12
}
