package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/farmer-weather-forecast/internal/weather"
)

const (
	PredictorLSTM        = "lstm"
	PredictorClimatology = "climatology"
)

// DefaultLocations covers Bangalore and the surrounding districts.
// Format: name[|alias...]:lat:lon, comma separated.
const DefaultLocations = "Bangalore|Bengaluru|Bangalore Urban:12.9716:77.5946," +
	"Bangalore Rural|Devanahalli:13.2437:77.7172," +
	"Mysore|Mysuru:12.2958:76.6394," +
	"Tumkur|Tumakuru:13.3379:77.1173," +
	"Kolar:13.1362:78.1292," +
	"Mandya:12.5218:76.8951," +
	"Ramanagara:12.7159:77.2813," +
	"Chikkaballapur|Chikkaballapura:13.4355:77.7315"

type AppConfig struct {
	Port string

	// HTTPTimeout bounds each outbound call to the data source and inference service.
	HTTPTimeout time.Duration
	// ForecastTimeout bounds data fetch plus inference for one forecast request.
	ForecastTimeout time.Duration

	ForecastDays int
	LookbackDays int

	PredictorBackend string
	MLServiceURL     string
	ObservationsURL  string

	// Locations to serve. PendingLocations are configured by name only and
	// need geocoding before they can be registered.
	Locations        []weather.Location
	PendingLocations []string
	MatchRadiusKm    float64

	// Observation cache refresh.
	RefreshInterval time.Duration
	CacheMaxAge     time.Duration

	GeocoderAPIKey string
	GeocoderRegion string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8000")

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.ForecastTimeout, err = getenvDuration("FORECAST_TIMEOUT", "20s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "1h"); err != nil {
		return nil, err
	}
	if cfg.CacheMaxAge, err = getenvDuration("CACHE_MAX_AGE", "6h"); err != nil {
		return nil, err
	}

	cfg.ForecastDays = getenvInt("FORECAST_DAYS", weather.DefaultForecastDays)
	if cfg.ForecastDays <= 0 {
		return nil, fmt.Errorf("invalid FORECAST_DAYS: must be positive")
	}
	cfg.LookbackDays = getenvInt("LOOKBACK_DAYS", 60)
	if cfg.LookbackDays <= 0 || cfg.LookbackDays > 92 {
		return nil, fmt.Errorf("invalid LOOKBACK_DAYS: must be within 1..92")
	}

	cfg.PredictorBackend = strings.ToLower(getenvDefault("PREDICTOR_BACKEND", PredictorLSTM))
	switch cfg.PredictorBackend {
	case PredictorLSTM, PredictorClimatology:
	default:
		return nil, fmt.Errorf("invalid PREDICTOR_BACKEND %q: use %s or %s", cfg.PredictorBackend, PredictorLSTM, PredictorClimatology)
	}
	cfg.MLServiceURL = getenvDefault("ML_SERVICE_URL", "http://localhost:5000")
	cfg.ObservationsURL = os.Getenv("OBSERVATIONS_BASE_URL")

	radius, err := strconv.ParseFloat(getenvDefault("LOCATION_MATCH_RADIUS_KM", "50"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid LOCATION_MATCH_RADIUS_KM: %w", err)
	}
	cfg.MatchRadiusKm = radius

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.GeocoderRegion = getenvDefault("GEOCODER_REGION", "Karnataka")

	locs, pending, err := ParseLocations(getenvDefault("FORECAST_LOCATIONS", DefaultLocations))
	if err != nil {
		return nil, err
	}
	cfg.Locations = locs
	cfg.PendingLocations = pending

	return cfg, nil
}

// ParseLocations parses "name[|alias...][:lat:lon]" entries separated by commas.
// Entries without coordinates are returned as pending names.
func ParseLocations(raw string) ([]weather.Location, []string, error) {
	var (
		locs    []weather.Location
		pending []string
	)

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, ":")
		names := splitNames(parts[0])
		if len(names) == 0 {
			return nil, nil, fmt.Errorf("location entry %q has no name", entry)
		}

		switch len(parts) {
		case 1:
			pending = append(pending, names[0])
		case 3:
			lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("location %s: invalid latitude: %w", names[0], err)
			}
			lon, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("location %s: invalid longitude: %w", names[0], err)
			}
			locs = append(locs, weather.Location{
				Name:      names[0],
				Aliases:   names[1:],
				Latitude:  lat,
				Longitude: lon,
			})
		default:
			return nil, nil, fmt.Errorf("location entry %q: want name[:lat:lon]", entry)
		}
	}

	if len(locs) == 0 && len(pending) == 0 {
		return nil, nil, fmt.Errorf("no forecast locations configured")
	}

	return locs, pending, nil
}

func splitNames(s string) []string {
	var names []string
	for _, n := range strings.Split(s, "|") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
