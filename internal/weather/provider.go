package weather

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPredictorNotReady is returned when the predictor failed to initialise at startup.
	ErrPredictorNotReady = errors.New("predictor not ready")
	// ErrLocationNotFound is returned when a request matches no registered location.
	ErrLocationNotFound = errors.New("location not found")
	// ErrUnsupportedLocation is returned by predictors that have no model for a location.
	ErrUnsupportedLocation = errors.New("unsupported location")
	// ErrModelNotReady is returned by predictors whose model is not loaded.
	ErrModelNotReady = errors.New("model not ready")
	// ErrDataUnavailable is returned when observations cannot be fetched.
	ErrDataUnavailable = errors.New("weather data unavailable")
	// ErrTimeout is returned when a collaborator call exceeds its time bound.
	ErrTimeout = errors.New("forecast timed out")
	// ErrCanceled is returned when the caller gave up before the forecast completed.
	ErrCanceled = errors.New("forecast canceled")
	// ErrInvalidPrediction is returned when a predictor's output breaks the forecast contract.
	ErrInvalidPrediction = errors.New("invalid prediction")
)

// ObservationSource abstracts a historical weather data source (e.g. Open-Meteo daily history).
type ObservationSource interface {
	Name() string
	Fetch(ctx context.Context, loc Location) ([]Observation, error)
}

// PredictInput is everything a predictor needs for one forecast.
type PredictInput struct {
	Location     Location
	Observations []Observation
	Start        Date
	Days         int
}

// Predictor abstracts the multi-location forecasting model.
// Implementations are constructed once and must be safe for concurrent use.
type Predictor interface {
	Name() string
	Supports(loc Location) bool
	Predict(ctx context.Context, in PredictInput) ([]DailyPrediction, error)
}

// Store is the contract the in-memory observation cache must satisfy.
type Store interface {
	SaveObservations(loc Location, obs []Observation, fetchedAt time.Time)
	GetFresh(loc Location, now time.Time) ([]Observation, error)
}
