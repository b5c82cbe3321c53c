package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"
)

const (
	// DefaultForecastDays is the forecast horizon: one month of daily records.
	DefaultForecastDays = 30
	// DefaultTimeout bounds the data fetch and inference of a single forecast.
	DefaultTimeout = 20 * time.Second
)

// Service orchestrates a forecast: location resolution, observation fetch,
// prediction, and the derived summary and alerts.
type Service struct {
	registry  *Registry
	source    ObservationSource
	predictor Predictor
	rules     AlertRules
	days      int
	timeout   time.Duration
	now       func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithForecastDays overrides the forecast horizon.
func WithForecastDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.days = days
		}
	}
}

// WithTimeout overrides the per-request collaborator time bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithAlertRules overrides the alert thresholds.
func WithAlertRules(r AlertRules) Option {
	return func(s *Service) { s.rules = r }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new Service. A nil predictor leaves the service not
// ready: every forecast fails with ErrPredictorNotReady.
func NewService(registry *Registry, source ObservationSource, predictor Predictor, opts ...Option) *Service {
	s := &Service{
		registry:  registry,
		source:    source,
		predictor: predictor,
		rules:     DefaultAlertRules,
		days:      DefaultForecastDays,
		timeout:   DefaultTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ready reports whether the predictor finished initialising.
func (s *Service) Ready() bool {
	return s.predictor != nil
}

// PredictorName returns the name of the active predictor, or "" when not ready.
func (s *Service) PredictorName() string {
	if s.predictor == nil {
		return ""
	}
	return s.predictor.Name()
}

// Supports reports whether the predictor has a model for loc.
func (s *Service) Supports(loc Location) bool {
	return s.predictor != nil && s.predictor.Supports(loc)
}

// Locations returns the registered locations.
func (s *Service) Locations() []Location {
	return s.registry.Locations()
}

// ForecastDays returns the configured horizon.
func (s *Service) ForecastDays() int {
	return s.days
}

// Forecast runs one forecast. The query is assumed to be validated.
func (s *Service) Forecast(ctx context.Context, q ForecastQuery) (Forecast, error) {
	if s.predictor == nil {
		return Forecast{}, ErrPredictorNotReady
	}

	loc, resolvedBy, err := s.registry.Resolve(q.Location, q.Latitude, q.Longitude)
	if err != nil {
		return Forecast{}, err
	}
	if resolvedBy == ResolvedByCoordinates {
		log.Printf("INFO: location %q resolved to %s by coordinates (%.4f, %.4f)", q.Location, loc.Name, q.Latitude, q.Longitude)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	obs, err := s.source.Fetch(ctx, loc)
	if err != nil {
		if timedOut(ctx, err) {
			return Forecast{}, fmt.Errorf("%w: fetching observations for %s: %v", ErrTimeout, loc.Name, err)
		}
		if canceled(ctx, err) {
			return Forecast{}, fmt.Errorf("%w: fetching observations for %s: %v", ErrCanceled, loc.Name, err)
		}
		if errors.Is(err, ErrDataUnavailable) {
			return Forecast{}, err
		}
		return Forecast{}, fmt.Errorf("%w: %s: %v", ErrDataUnavailable, s.source.Name(), err)
	}

	start := NewDate(s.now()).AddDays(1)

	preds, err := s.predictor.Predict(ctx, PredictInput{
		Location:     loc,
		Observations: obs,
		Start:        start,
		Days:         s.days,
	})
	if err != nil {
		if timedOut(ctx, err) {
			return Forecast{}, fmt.Errorf("%w: predicting for %s: %v", ErrTimeout, loc.Name, err)
		}
		if canceled(ctx, err) {
			return Forecast{}, fmt.Errorf("%w: predicting for %s: %v", ErrCanceled, loc.Name, err)
		}
		return Forecast{}, fmt.Errorf("predict %s with %s: %w", loc.Name, s.predictor.Name(), err)
	}

	preds, err = normalizePredictions(preds, start, s.days)
	if err != nil {
		return Forecast{}, fmt.Errorf("predict %s with %s: %w", loc.Name, s.predictor.Name(), err)
	}

	return Forecast{
		Location:          loc,
		RequestedLocation: q.Location,
		ResolvedBy:        resolvedBy,
		Model:             s.predictor.Name(),
		ForecastDays:      s.days,
		Predictions:       preds,
		Summary:           Summarize(preds),
		Alerts:            s.rules.Evaluate(preds),
	}, nil
}

func timedOut(ctx context.Context, err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func canceled(ctx context.Context, err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled)
}

// normalizePredictions enforces the forecast contract on predictor output:
// exactly days records on consecutive dates from start, temp_min <= temp_max
// and non-negative rainfall. Extra trailing records are dropped.
func normalizePredictions(preds []DailyPrediction, start Date, days int) ([]DailyPrediction, error) {
	if len(preds) < days {
		return nil, fmt.Errorf("%w: got %d days, want %d", ErrInvalidPrediction, len(preds), days)
	}

	out := make([]DailyPrediction, days)
	for i := 0; i < days; i++ {
		p := preds[i]

		want := start.AddDays(i)
		if !p.Date.Equal(want.Time) {
			return nil, fmt.Errorf("%w: day %d has date %s, want %s", ErrInvalidPrediction, i, p.Date, want)
		}
		if !finite(p.TempMax) || !finite(p.TempMin) || !finite(p.Rainfall) {
			return nil, fmt.Errorf("%w: non-finite value on %s", ErrInvalidPrediction, p.Date)
		}

		if p.TempMin > p.TempMax {
			p.TempMin, p.TempMax = p.TempMax, p.TempMin
		}
		if p.Rainfall < 0 {
			p.Rainfall = 0
		}
		out[i] = p
	}

	return out, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
