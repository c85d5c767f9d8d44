package stats

import (
	"math"
	"testing"
	"time"

	"rutaflow/internal/domain"
	"rutaflow/internal/profit"
)

// fareOnly makes net earning equal to the fare.
func fareOnly() domain.Settings {
	s := domain.DefaultSettings()
	s.FuelPricePerLiter = 0
	s.CommissionPercent = 0
	return s
}

func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 15, 0, 0, time.UTC)
}

func sampleTrips() []*domain.Trip {
	return []*domain.Trip{
		{ID: "1", Platform: domain.PlatformUber, Fare: 100, DestKm: 10, DestMin: 30, Date: "2026-03-10", CreatedAt: at(10, 8)},
		{ID: "2", Platform: domain.PlatformDidi, Fare: 60, DestKm: 5, DestMin: 15, Date: "2026-03-10", CreatedAt: at(10, 8)},
		{ID: "3", Platform: domain.PlatformUber, Fare: 200, GPSKm: 20, GPSMin: 60, Date: "2026-03-11", CreatedAt: at(11, 19)},
		{ID: "4", Platform: "", Fare: 40, DestKm: 2, DestMin: 10, CreatedAt: at(12, 13)},
		nil,
	}
}

func TestCompute_Totals(t *testing.T) {
	t.Parallel()

	r := Compute(sampleTrips(), fareOnly(), profit.NewCalculator(profit.DefaultPolicy()), time.UTC)

	if r.Totals.Count != 4 {
		t.Fatalf("expected 4 trips, got %d", r.Totals.Count)
	}
	if r.Totals.Net != 400 || r.Totals.Gross != 400 {
		t.Errorf("expected net and gross 400, got %v/%v", r.Totals.Net, r.Totals.Gross)
	}
	if r.Totals.Km != 37 || r.Totals.Minutes != 115 {
		t.Errorf("expected 37 km / 115 min, got %v/%v", r.Totals.Km, r.Totals.Minutes)
	}
	want := 400 / (115.0 / 60)
	if math.Abs(r.Totals.NetPerHour()-want) > 1e-9 {
		t.Errorf("expected %v net/hour, got %v", want, r.Totals.NetPerHour())
	}
}

func TestCompute_Platforms(t *testing.T) {
	t.Parallel()

	r := Compute(sampleTrips(), fareOnly(), profit.NewCalculator(profit.DefaultPolicy()), nil)

	if len(r.Platforms) != 2 {
		t.Fatalf("expected 2 platforms, got %d", len(r.Platforms))
	}
	uber, didi := r.Platforms[0], r.Platforms[1]
	if uber.Platform != domain.PlatformUber || didi.Platform != domain.PlatformDidi {
		t.Fatalf("unexpected platform order %s, %s", uber.Platform, didi.Platform)
	}
	// The trip without a platform counts as uber.
	if uber.Count != 3 || uber.Net != 340 {
		t.Errorf("expected uber 3 trips / 340, got %d / %v", uber.Count, uber.Net)
	}
	if math.Abs(uber.NetPerTrip()-340.0/3) > 1e-9 {
		t.Errorf("unexpected uber net per trip %v", uber.NetPerTrip())
	}
	if didi.NetPerTrip() != 60 {
		t.Errorf("expected didi net per trip 60, got %v", didi.NetPerTrip())
	}
}

func TestCompute_HoursAndBestHours(t *testing.T) {
	t.Parallel()

	r := Compute(sampleTrips(), fareOnly(), profit.NewCalculator(profit.DefaultPolicy()), time.UTC)

	gotHours := make([]int, 0, len(r.Hours))
	for _, h := range r.Hours {
		gotHours = append(gotHours, h.Hour)
	}
	if len(gotHours) != 3 || gotHours[0] != 8 || gotHours[1] != 13 || gotHours[2] != 19 {
		t.Fatalf("expected hours [8 13 19], got %v", gotHours)
	}

	// Averages: 8h -> 80, 13h -> 40, 19h -> 200.
	if len(r.BestHours) != 3 {
		t.Fatalf("expected 3 best hours, got %d", len(r.BestHours))
	}
	if r.BestHours[0].Hour != 19 || r.BestHours[1].Hour != 8 || r.BestHours[2].Hour != 13 {
		t.Errorf("unexpected best hours order: %+v", r.BestHours)
	}
}

func TestCompute_HoursUseLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("CST", -6*60*60)
	trips := []*domain.Trip{{Fare: 10, DestKm: 1, DestMin: 1, CreatedAt: at(10, 8)}}

	r := Compute(trips, fareOnly(), profit.NewCalculator(profit.DefaultPolicy()), loc)
	if r.Hours[0].Hour != 2 {
		t.Errorf("expected local hour 2, got %d", r.Hours[0].Hour)
	}
}

func TestCompute_DailySeries(t *testing.T) {
	t.Parallel()

	r := Compute(sampleTrips(), fareOnly(), profit.NewCalculator(profit.DefaultPolicy()), time.UTC)

	if len(r.Daily) != 3 {
		t.Fatalf("expected 3 days, got %d", len(r.Daily))
	}
	wantDates := []string{"2026-03-10", "2026-03-11", "2026-03-12"}
	for i, d := range r.Daily {
		if d.Date != wantDates[i] {
			t.Errorf("day %d: expected %s, got %s", i, wantDates[i], d.Date)
		}
	}
	if r.Daily[0].Count != 2 || r.Daily[0].Net != 160 {
		t.Errorf("unexpected first day: %+v", r.Daily[0])
	}
	if r.BestDay == nil || r.BestDay.Date != "2026-03-11" {
		t.Errorf("expected best day 2026-03-11, got %+v", r.BestDay)
	}
}

func TestCompute_Empty(t *testing.T) {
	t.Parallel()

	r := Compute(nil, fareOnly(), profit.NewCalculator(profit.DefaultPolicy()), nil)
	if r.Totals.Count != 0 || r.Totals.NetPerHour() != 0 || r.Totals.NetPerTrip() != 0 {
		t.Errorf("expected zero totals, got %+v", r.Totals)
	}
	if r.BestDay != nil || len(r.BestHours) != 0 {
		t.Error("expected no best day or hours")
	}
}

func TestFilterSince(t *testing.T) {
	t.Parallel()

	trips := sampleTrips()
	tests := []struct {
		name  string
		since time.Time
		want  int
	}{
		{name: "zero keeps all", since: time.Time{}, want: 4},
		{name: "inclusive bound", since: at(11, 19), want: 2},
		{name: "after all", since: at(20, 0), want: 0},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := len(FilterSince(trips, tc.since)); got != tc.want {
				t.Errorf("expected %d trips, got %d", tc.want, got)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	now := at(31, 12)
	if got := Window(now, 30); !got.Equal(at(1, 12)) {
		t.Errorf("expected 30-day window to start on day 1, got %v", got)
	}
	if !Window(now, 0).IsZero() {
		t.Error("expected zero window for non-positive days")
	}
}

func TestLoggedAtFallsBack(t *testing.T) {
	t.Parallel()

	trip := &domain.Trip{StartedAt: at(3, 7), EndedAt: at(3, 8)}
	if !LoggedAt(trip).Equal(at(3, 8)) {
		t.Errorf("expected ended time, got %v", LoggedAt(trip))
	}
	trip.EndedAt = time.Time{}
	if !LoggedAt(trip).Equal(at(3, 7)) {
		t.Errorf("expected started time, got %v", LoggedAt(trip))
	}
}
