package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Profit.AcceptableRatio != 0.75 || cfg.Profit.WorkdayHours != 8 {
		t.Errorf("unexpected profit defaults %+v", cfg.Profit)
	}
	if cfg.GPS.NoiseThresholdKm != 0.01 {
		t.Errorf("expected 10 m noise threshold, got %v", cfg.GPS.NoiseThresholdKm)
	}
	if cfg.Assistant.ChatMaxTokens != 700 || cfg.Assistant.PhotoMaxTokens != 200 {
		t.Errorf("unexpected assistant token limits %+v", cfg.Assistant)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PROFIT_ACCEPTABLE_RATIO", "0.8")
	t.Setenv("REDIS_SHIFT_TTL", "2h")
	t.Setenv("STATS_WINDOW_DAYS", "not-a-number")
	t.Setenv("NEW_RELIC_ENABLED", "true")

	cfg := Load()
	if cfg.Profit.AcceptableRatio != 0.8 {
		t.Errorf("expected ratio 0.8, got %v", cfg.Profit.AcceptableRatio)
	}
	if cfg.Redis.ShiftTTL != 2*time.Hour {
		t.Errorf("expected 2h TTL, got %v", cfg.Redis.ShiftTTL)
	}
	if cfg.Stats.WindowDays != 30 {
		t.Errorf("expected invalid value to fall back to 30, got %d", cfg.Stats.WindowDays)
	}
	if !cfg.NewRelic.Enabled {
		t.Error("expected New Relic enabled")
	}
}

func TestStatsLocation(t *testing.T) {
	t.Parallel()

	if loc := (StatsConfig{Timezone: "Nowhere/Invalid"}).Location(); loc != time.UTC {
		t.Errorf("expected UTC fallback, got %v", loc)
	}
}
