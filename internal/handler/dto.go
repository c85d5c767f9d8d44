package handler

import (
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/geo"
	"rutaflow/internal/numeric"
	"rutaflow/internal/profit"
	"rutaflow/internal/service"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// TripRequest is the HTTP request body for logging or previewing a trip.
// Numbers may arrive as JSON numbers or numeric strings; anything else is zero.
type TripRequest struct {
	Platform  string        `json:"platform"`
	Source    string        `json:"source"`
	Fare      numeric.Float `json:"fare"`
	PickupKm  numeric.Float `json:"pickup_km"`
	PickupMin numeric.Float `json:"pickup_min"`
	DestKm    numeric.Float `json:"dest_km"`
	DestMin   numeric.Float `json:"dest_min"`
	GPSKm     numeric.Float `json:"gps_km"`
	GPSMin    numeric.Float `json:"gps_min"`
	Date      string        `json:"date"`
}

func (r TripRequest) input() service.TripInput {
	return service.TripInput{
		Platform:  r.Platform,
		Source:    r.Source,
		Fare:      r.Fare.Float64(),
		PickupKm:  r.PickupKm.Float64(),
		PickupMin: r.PickupMin.Float64(),
		DestKm:    r.DestKm.Float64(),
		DestMin:   r.DestMin.Float64(),
		GPSKm:     r.GPSKm.Float64(),
		GPSMin:    r.GPSMin.Float64(),
		Date:      r.Date,
	}
}

// SettingsRequest is the HTTP request body for PUT /v1/settings. Absent
// fields keep their current value; present numbers are coerced like trip input.
type SettingsRequest struct {
	FuelPricePerLiter *numeric.Float `json:"fuel_price_per_liter"`
	KmPerLiter        *numeric.Float `json:"km_per_liter"`
	TargetHourlyRate  *numeric.Float `json:"target_hourly_rate"`
	TargetPerKmRate   *numeric.Float `json:"target_per_km_rate"`
	CommissionPercent *numeric.Float `json:"commission_percent"`

	VehiclePayment *PeriodicCostRequest `json:"vehicle_payment"`
	Insurance      *PeriodicCostRequest `json:"insurance"`
	MobileData     *PeriodicCostRequest `json:"mobile_data"`
	Tires          *WearCostRequest     `json:"tires"`
	Maintenance    *WearCostRequest     `json:"maintenance"`
}

// PeriodicCostRequest updates a time-based fixed cost.
type PeriodicCostRequest struct {
	Enabled *bool          `json:"enabled"`
	Amount  *numeric.Float `json:"amount"`
	Period  *string        `json:"period"`
}

// WearCostRequest updates a distance-based fixed cost.
type WearCostRequest struct {
	Enabled    *bool          `json:"enabled"`
	Amount     *numeric.Float `json:"amount"`
	LifetimeKm *numeric.Float `json:"lifetime_km"`
}

func setFloat(dst *float64, v *numeric.Float) {
	if v != nil {
		*dst = v.Float64()
	}
}

func (r *PeriodicCostRequest) apply(c *domain.PeriodicCost) {
	if r == nil {
		return
	}
	if r.Enabled != nil {
		c.Enabled = *r.Enabled
	}
	setFloat(&c.Amount, r.Amount)
	if r.Period != nil {
		c.Period = domain.ParsePeriod(*r.Period)
	}
}

func (r *WearCostRequest) apply(c *domain.WearCost) {
	if r == nil {
		return
	}
	if r.Enabled != nil {
		c.Enabled = *r.Enabled
	}
	setFloat(&c.Amount, r.Amount)
	setFloat(&c.LifetimeKm, r.LifetimeKm)
}

// apply merges the request over the current settings.
func (r SettingsRequest) apply(current domain.Settings) domain.Settings {
	setFloat(&current.FuelPricePerLiter, r.FuelPricePerLiter)
	setFloat(&current.KmPerLiter, r.KmPerLiter)
	setFloat(&current.TargetHourlyRate, r.TargetHourlyRate)
	setFloat(&current.TargetPerKmRate, r.TargetPerKmRate)
	setFloat(&current.CommissionPercent, r.CommissionPercent)
	r.VehiclePayment.apply(&current.VehiclePayment)
	r.Insurance.apply(&current.Insurance)
	r.MobileData.apply(&current.MobileData)
	r.Tires.apply(&current.Tires)
	r.Maintenance.apply(&current.Maintenance)
	return current
}

// BreakdownResponse is the profitability decomposition of a trip.
type BreakdownResponse struct {
	DistanceKm         float64        `json:"distance_km"`
	DurationMin        float64        `json:"duration_min"`
	Fare               float64        `json:"fare"`
	PlatformFee        float64        `json:"platform_fee"`
	FuelCost           float64        `json:"fuel_cost"`
	FixedCost          float64        `json:"fixed_cost"`
	Fixed              FixedResponse  `json:"fixed"`
	NetEarning         float64        `json:"net_earning"`
	NetPerHour         float64        `json:"net_per_hour"`
	NetPerKm           float64        `json:"net_per_km"`
	GrossMarginPercent float64        `json:"gross_margin_percent"`
	Verdict            profit.Verdict `json:"verdict"`
	Score              int            `json:"score"`
}

// FixedResponse lists the amortized fixed cost per item.
type FixedResponse struct {
	VehiclePayment float64 `json:"vehicle_payment"`
	Insurance      float64 `json:"insurance"`
	MobileData     float64 `json:"mobile_data"`
	Tires          float64 `json:"tires"`
	Maintenance    float64 `json:"maintenance"`
}

func breakdownResponse(b profit.Breakdown) BreakdownResponse {
	return BreakdownResponse{
		DistanceKm:  b.DistanceKm,
		DurationMin: b.DurationMin,
		Fare:        b.Fare,
		PlatformFee: b.PlatformFee,
		FuelCost:    b.FuelCost,
		FixedCost:   b.FixedCost,
		Fixed: FixedResponse{
			VehiclePayment: b.Fixed.VehiclePayment,
			Insurance:      b.Fixed.Insurance,
			MobileData:     b.Fixed.MobileData,
			Tires:          b.Fixed.Tires,
			Maintenance:    b.Fixed.Maintenance,
		},
		NetEarning:         b.NetEarning,
		NetPerHour:         b.NetPerHour,
		NetPerKm:           b.NetPerKm,
		GrossMarginPercent: b.GrossMarginPercent,
		Verdict:            b.Verdict,
		Score:              b.Score,
	}
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	ID        string            `json:"id,omitempty"`
	ShiftID   string            `json:"shift_id,omitempty"`
	Platform  string            `json:"platform"`
	Source    string            `json:"source"`
	Fare      float64           `json:"fare"`
	PickupKm  float64           `json:"pickup_km"`
	PickupMin float64           `json:"pickup_min"`
	DestKm    float64           `json:"dest_km"`
	DestMin   float64           `json:"dest_min"`
	GPSKm     float64           `json:"gps_km"`
	GPSMin    float64           `json:"gps_min"`
	Date      string            `json:"date"`
	CreatedAt string            `json:"created_at,omitempty"`
	Breakdown BreakdownResponse `json:"breakdown"`
}

func tripResponse(v service.TripView) TripResponse {
	t := v.Trip
	return TripResponse{
		ID:        t.ID,
		ShiftID:   t.ShiftID,
		Platform:  string(t.Platform),
		Source:    string(t.Source),
		Fare:      t.Fare,
		PickupKm:  t.PickupKm,
		PickupMin: t.PickupMin,
		DestKm:    t.DestKm,
		DestMin:   t.DestMin,
		GPSKm:     t.GPSKm,
		GPSMin:    t.GPSMin,
		Date:      t.Date,
		CreatedAt: formatTime(t.CreatedAt),
		Breakdown: breakdownResponse(v.Breakdown),
	}
}

// SessionResponse is a work day.
type SessionResponse struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	StartedAt string  `json:"started_at"`
	EndedAt   string  `json:"ended_at,omitempty"`
	Running   bool    `json:"running"`
	GPSKm     float64 `json:"gps_km"`
	TotalNet  float64 `json:"total_net"`
	TotalKm   float64 `json:"total_km"`
	TripCount int     `json:"trip_count"`
}

func sessionResponse(s *domain.ShiftSession) *SessionResponse {
	if s == nil {
		return nil
	}
	return &SessionResponse{
		ID:        s.ID,
		Date:      s.Date,
		StartedAt: formatTime(s.StartedAt),
		EndedAt:   formatTime(s.EndedAt),
		Running:   s.Running,
		GPSKm:     s.GPSKm,
		TotalNet:  s.TotalNet,
		TotalKm:   s.TotalKm,
		TripCount: s.TripCount,
	}
}

// ActiveTripResponse is the trip in progress.
type ActiveTripResponse struct {
	ID        string  `json:"id"`
	Platform  string  `json:"platform"`
	StartedAt string  `json:"started_at"`
	GPSKm     float64 `json:"gps_km"`
}

// ShiftResponse is the HTTP response for shift operations.
type ShiftResponse struct {
	State              string              `json:"state"`
	Applied            bool                `json:"applied"`
	Session            *SessionResponse    `json:"session,omitempty"`
	ActiveTrip         *ActiveTripResponse `json:"active_trip,omitempty"`
	ElapsedSeconds     int64               `json:"elapsed_seconds"`
	TripElapsedSeconds int64               `json:"trip_elapsed_seconds"`
	LastFix            *geo.Fix            `json:"last_fix,omitempty"`
	Notice             *service.Notice     `json:"notice,omitempty"`
}

func shiftResponse(v service.ShiftView, applied bool, notice *service.Notice) ShiftResponse {
	resp := ShiftResponse{
		State:              string(v.State),
		Applied:            applied,
		Session:            sessionResponse(v.Session),
		ElapsedSeconds:     int64(v.Elapsed / time.Second),
		TripElapsedSeconds: int64(v.TripElapsed / time.Second),
		LastFix:            v.LastFix,
		Notice:             notice,
	}
	if t := v.ActiveTrip; t != nil {
		resp.ActiveTrip = &ActiveTripResponse{
			ID:        t.ID,
			Platform:  string(t.Platform),
			StartedAt: formatTime(t.StartedAt),
			GPSKm:     t.GPSKm,
		}
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}
