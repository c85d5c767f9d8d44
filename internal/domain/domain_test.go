package domain

import (
	"math"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Platform
	}{
		{"", PlatformUber},
		{"uber", PlatformUber},
		{"didi", PlatformDidi},
		{"beat", PlatformBeat},
		{"otra", PlatformOther},
		{"cabify", PlatformOther},
	}
	for _, tc := range tests {
		if got := ParsePlatform(tc.in); got != tc.want {
			t.Errorf("ParsePlatform(%q): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	if ParsePeriod("semestral") != PeriodSemiannual || ParsePeriod("weekly") != PeriodWeekly {
		t.Error("expected Spanish and English names to resolve")
	}
	if ParsePeriod("bimestral") != Period("bimestral") {
		t.Error("expected unknown period to pass through")
	}
}

func TestSettingsNormalized(t *testing.T) {
	t.Parallel()

	s := Settings{
		FuelPricePerLiter: -3,
		KmPerLiter:        math.NaN(),
		CommissionPercent: 25,
		Insurance:         PeriodicCost{Enabled: true, Amount: -100, Period: "anual"},
		MobileData:        PeriodicCost{Enabled: true, Amount: 300},
		Tires:             WearCost{Enabled: true, Amount: 8000, LifetimeKm: -1},
	}.Normalized()

	if s.FuelPricePerLiter != 0 || s.KmPerLiter != 0 || s.CommissionPercent != 25 {
		t.Errorf("unexpected scalar values %+v", s)
	}
	if s.Insurance.Amount != 0 || s.Insurance.Period != PeriodAnnual {
		t.Errorf("unexpected insurance %+v", s.Insurance)
	}
	if s.MobileData.Period != PeriodMonthly {
		t.Errorf("expected empty period to default to monthly, got %s", s.MobileData.Period)
	}
	if s.Tires.LifetimeKm != 0 || s.Tires.Amount != 8000 {
		t.Errorf("unexpected tires %+v", s.Tires)
	}
}

func TestDefaultSettingsHaveNoFixedCosts(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	for _, c := range s.PeriodicCosts() {
		if c.Enabled {
			t.Errorf("expected periodic costs disabled by default, got %+v", c)
		}
	}
	for _, c := range s.WearCosts() {
		if c.Enabled {
			t.Errorf("expected wear costs disabled by default, got %+v", c)
		}
	}
}
