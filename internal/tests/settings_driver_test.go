package tests

import (
	"context"
	"errors"
	"testing"

	"rutaflow/internal/domain"
	"rutaflow/internal/service"
)

// ──────────────────────────────────────────────
// SETTINGS
// ──────────────────────────────────────────────

func TestSettings_DefaultsWhenNeverSaved(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	got, err := h.settings.Get(context.Background(), testDriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.DefaultSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
	if !h.cache.IsCached(testDriverID) {
		t.Error("expected settings to be cached after a read")
	}
}

func TestSettings_ServedFromCache(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.settings.Get(ctx, testDriverID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := h.settings.Get(ctx, testDriverID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.settingsRepo.GetCallCount != 1 {
		t.Errorf("expected 1 database read, got %d", h.settingsRepo.GetCallCount)
	}
}

func TestSettings_CacheFailureFallsBackToDatabase(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.cache.GetError = ErrMockTimeout

	stored := domain.DefaultSettings()
	stored.FuelPricePerLiter = 25.5
	h.settingsRepo.SetSettings(testDriverID, stored)

	got, err := h.settings.Get(context.Background(), testDriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FuelPricePerLiter != 25.5 {
		t.Errorf("expected stored fuel price 25.5, got %v", got.FuelPricePerLiter)
	}
}

func TestSettings_DatabaseErrorPropagates(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	h.settingsRepo.GetError = ErrMockTimeout

	_, err := h.settings.Get(context.Background(), testDriverID)
	if !errors.Is(err, ErrMockTimeout) {
		t.Errorf("expected ErrMockTimeout, got %v", err)
	}
}

func TestSettings_UpdateNormalizes(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	// Warm the cache so the update has something to invalidate.
	if _, err := h.settings.Get(ctx, testDriverID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	in := domain.DefaultSettings()
	in.CommissionPercent = -5
	in.VehiclePayment = domain.PeriodicCost{Enabled: true, Amount: 6000, Period: "mensual"}
	in.Insurance = domain.PeriodicCost{Enabled: true, Amount: -100, Period: "anual"}

	result, err := h.settings.Update(ctx, testDriverID, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Settings.CommissionPercent != 0 {
		t.Errorf("expected negative commission to clamp to 0, got %v", result.Settings.CommissionPercent)
	}
	if result.Settings.VehiclePayment.Period != domain.PeriodMonthly {
		t.Errorf("expected period monthly, got %s", result.Settings.VehiclePayment.Period)
	}
	if result.Settings.Insurance.Period != domain.PeriodAnnual || result.Settings.Insurance.Amount != 0 {
		t.Errorf("expected annual insurance with zero amount, got %+v", result.Settings.Insurance)
	}
	if result.Notice == nil || result.Notice.Type != service.NoticeSettingsSaved {
		t.Errorf("expected SETTINGS_SAVED notice, got %+v", result.Notice)
	}
	if h.cache.InvalidateCallCount != 1 {
		t.Errorf("expected cache invalidation, got %d", h.cache.InvalidateCallCount)
	}

	got, err := h.settings.Get(ctx, testDriverID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != result.Settings {
		t.Errorf("expected saved settings to be read back, got %+v", got)
	}
}

func TestSettings_ChangeAffectsBreakdown(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	s := domain.DefaultSettings()
	s.CommissionPercent = 25
	if _, err := h.settings.Update(ctx, testDriverID, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view, err := h.tripSvc.Preview(ctx, testDriverID, service.TripInput{Fare: 100, DestKm: 10, DestMin: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(view.Breakdown.PlatformFee, 25) {
		t.Errorf("expected fee 25, got %v", view.Breakdown.PlatformFee)
	}
	if !almostEqual(view.Breakdown.NetEarning, 55) {
		t.Errorf("expected net 55, got %v", view.Breakdown.NetEarning)
	}
}

// ──────────────────────────────────────────────
// DRIVER REGISTRATION
// ──────────────────────────────────────────────

func TestDriver_Register(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	driver, err := h.driverSvc.Register(ctx, service.RegisterDriverRequest{
		Name:  "  Ana  ",
		Email: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if driver.ID == "" {
		t.Error("expected driver ID to be assigned")
	}
	if driver.Name != "Ana" {
		t.Errorf("expected trimmed name, got %q", driver.Name)
	}
	if h.settingsRepo.UpsertCallCount != 1 {
		t.Error("expected default settings to be stored")
	}

	got, err := h.driverSvc.Get(ctx, driver.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Errorf("expected email ana@example.com, got %s", got.Email)
	}
}

func TestDriver_RegisterValidation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		email   string
		wantErr error
	}{
		{name: "empty email", email: "", wantErr: service.ErrInvalidEmail},
		{name: "not an email", email: "ana", wantErr: service.ErrInvalidEmail},
		{name: "whitespace", email: "   ", wantErr: service.ErrInvalidEmail},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			h := newHarness(t)
			_, err := h.driverSvc.Register(context.Background(), service.RegisterDriverRequest{Email: tc.email})
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
			if h.drivers.CreateCallCount != 0 {
				t.Error("expected no driver to be created")
			}
		})
	}
}

func TestDriver_RegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	ctx := context.Background()

	if _, err := h.driverSvc.Register(ctx, service.RegisterDriverRequest{Email: "ana@example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := h.driverSvc.Register(ctx, service.RegisterDriverRequest{Email: "ANA@example.com"})
	if !errors.Is(err, service.ErrDriverExists) {
		t.Errorf("expected ErrDriverExists, got %v", err)
	}
}
