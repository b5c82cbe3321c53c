package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FORECAST_LOCATIONS", "")
	t.Setenv("PREDICTOR_BACKEND", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.ForecastDays != 30 {
		t.Errorf("ForecastDays = %d, want 30", cfg.ForecastDays)
	}
	if cfg.ForecastTimeout != 20*time.Second {
		t.Errorf("ForecastTimeout = %v, want 20s", cfg.ForecastTimeout)
	}
	if cfg.PredictorBackend != PredictorLSTM {
		t.Errorf("PredictorBackend = %q, want %q", cfg.PredictorBackend, PredictorLSTM)
	}
	if len(cfg.Locations) != 8 || len(cfg.PendingLocations) != 0 {
		t.Fatalf("expected 8 default locations, got %d (+%d pending)", len(cfg.Locations), len(cfg.PendingLocations))
	}
	if cfg.Locations[0].Name != "Bangalore" || len(cfg.Locations[0].Aliases) != 2 {
		t.Errorf("unexpected first location %+v", cfg.Locations[0])
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FORECAST_DAYS", "14")
	t.Setenv("FORECAST_TIMEOUT", "5s")
	t.Setenv("PREDICTOR_BACKEND", "Climatology")
	t.Setenv("FORECAST_LOCATIONS", "Hosur:12.7409:77.8253,Chintamani")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ForecastDays != 14 || cfg.ForecastTimeout != 5*time.Second {
		t.Errorf("overrides not applied: %d days, %v", cfg.ForecastDays, cfg.ForecastTimeout)
	}
	if cfg.PredictorBackend != PredictorClimatology {
		t.Errorf("PredictorBackend = %q", cfg.PredictorBackend)
	}
	if len(cfg.Locations) != 1 || cfg.Locations[0].Name != "Hosur" {
		t.Errorf("unexpected locations %+v", cfg.Locations)
	}
	if len(cfg.PendingLocations) != 1 || cfg.PendingLocations[0] != "Chintamani" {
		t.Errorf("unexpected pending locations %v", cfg.PendingLocations)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"FORECAST_TIMEOUT":   "soon",
		"PREDICTOR_BACKEND":  "prophet",
		"LOOKBACK_DAYS":      "365",
		"FORECAST_LOCATIONS": "Bangalore:12.97",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestParseLocations(t *testing.T) {
	locs, pending, err := ParseLocations(" Bangalore | Bengaluru :12.97:77.59 , , Kolar:13.1:78.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pending) != 0 || len(locs) != 2 {
		t.Fatalf("unexpected result %+v %v", locs, pending)
	}
	if locs[0].Name != "Bangalore" || locs[0].Aliases[0] != "Bengaluru" {
		t.Errorf("unexpected names %+v", locs[0])
	}
	if locs[1].Latitude != 13.1 || locs[1].Longitude != 78.1 {
		t.Errorf("unexpected coordinates %+v", locs[1])
	}

	if _, _, err := ParseLocations(" , "); err == nil {
		t.Error("expected error for empty location list")
	}
	if _, _, err := ParseLocations("Kolar:north:east"); err == nil {
		t.Error("expected error for non-numeric coordinates")
	}
}
