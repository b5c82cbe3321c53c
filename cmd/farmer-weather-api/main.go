package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/farmer-weather-forecast/internal/api/http"
	"github.com/i474232898/farmer-weather-forecast/internal/config"
	"github.com/i474232898/farmer-weather-forecast/internal/geo"
	"github.com/i474232898/farmer-weather-forecast/internal/metrics"
	"github.com/i474232898/farmer-weather-forecast/internal/scheduler"
	"github.com/i474232898/farmer-weather-forecast/internal/store"
	"github.com/i474232898/farmer-weather-forecast/internal/weather"
	"github.com/i474232898/farmer-weather-forecast/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	locations := append([]weather.Location(nil), cfg.Locations...)
	if len(cfg.PendingLocations) > 0 {
		locations = append(locations, geocodePending(cfg)...)
	}

	registry, err := weather.NewRegistry(locations, cfg.MatchRadiusKm)
	if err != nil {
		log.Fatalf("failed to register locations: %v", err)
	}
	log.Printf("INFO: registered %d forecast locations", len(locations))

	// Shared HTTP client for outbound collaborator calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Observation source with an in-memory cache in front of it.
	memStore := store.NewMemoryStore(cfg.LookbackDays, cfg.CacheMaxAge)
	source := weather.NewCachingSource(
		providers.NewOpenMeteoProvider(httpClient, cfg.ObservationsURL, cfg.LookbackDays),
		memStore,
	)

	collector := metrics.NewCollector("farmer_weather")

	// The predictor is built once, before the listener starts. On failure the
	// service stays up but reports not ready; there is no retry.
	predictor := initPredictor(cfg, httpClient, locations)
	collector.SetPredictorReady(predictor != nil)

	service := weather.NewService(registry, source, predictor,
		weather.WithForecastDays(cfg.ForecastDays),
		weather.WithTimeout(cfg.ForecastTimeout),
	)

	// Scheduler that keeps the observation cache warm.
	sched := scheduler.New(locations, cfg.RefreshInterval, source)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(service, collector, httpapi.Options{AccessLog: true})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}

// initPredictor returns nil when the predictor could not be constructed.
func initPredictor(cfg *config.AppConfig, client *http.Client, locations []weather.Location) weather.Predictor {
	log.Printf("INFO: initializing %s predictor...", cfg.PredictorBackend)

	var predictor weather.Predictor
	switch cfg.PredictorBackend {
	case config.PredictorClimatology:
		predictor = weather.NewClimatologyPredictor(locations)
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		lstm, err := providers.NewLSTMClient(ctx, client, cfg.MLServiceURL)
		if err != nil {
			log.Printf("ERROR: predictor initialization failed, forecasts will return 503: %v", err)
			return nil
		}
		log.Printf("INFO: loaded %d lstm models from %s", len(lstm.Models()), cfg.MLServiceURL)
		predictor = lstm
	}

	for _, loc := range locations {
		if !predictor.Supports(loc) {
			log.Printf("WARN: predictor %s has no model for %s", predictor.Name(), loc.Name)
		}
	}
	log.Printf("INFO: predictor %s initialized successfully", predictor.Name())
	return predictor
}

func geocodePending(cfg *config.AppConfig) []weather.Location {
	gc := geo.NewGoogleGeocoder(cfg.GeocoderAPIKey)

	var out []weather.Location
	for _, name := range cfg.PendingLocations {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
		res, err := gc.ForwardGeocode(ctx, name, cfg.GeocoderRegion, "India")
		cancel()
		if err != nil {
			log.Printf("WARN: skipping location %s: %v", name, err)
			continue
		}
		log.Printf("INFO: geocoded %s to (%.4f, %.4f)", name, res.Lat, res.Lon)
		out = append(out, weather.Location{Name: name, Latitude: res.Lat, Longitude: res.Lon})
	}
	return out
}
