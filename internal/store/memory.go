package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/farmer-weather-forecast/internal/weather"
)

var (
	// ErrNotFound is returned when no observations are cached for a location.
	ErrNotFound = errors.New("no observations cached for location")
	// ErrStale is returned when the cached observations are older than the max age.
	ErrStale = errors.New("cached observations are stale")
)

// ObservationWindow holds the most recent observation window fetched for a location.
type ObservationWindow struct {
	Observations []weather.Observation
	FetchedAt    time.Time
}

// MemoryStore is a concurrency-safe in-memory cache of observation windows.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: window
	data map[string]*ObservationWindow

	// retention configuration
	maxObservations int           // max number of observations kept per location
	maxAge          time.Duration // how long a window stays fresh
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxObservations is <= 0, it is treated as unlimited; if maxAge is <= 0
// windows never go stale.
func NewMemoryStore(maxObservations int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:            make(map[string]*ObservationWindow),
		maxObservations: maxObservations,
		maxAge:          maxAge,
	}
}

// SaveObservations replaces the window for a location and enforces retention.
func (s *MemoryStore) SaveObservations(loc weather.Location, obs []weather.Observation, fetchedAt time.Time) {
	kept := make([]weather.Observation, len(obs))
	copy(kept, obs)

	// Keep the newest observations when over the limit.
	if s.maxObservations > 0 && len(kept) > s.maxObservations {
		kept = kept[len(kept)-s.maxObservations:]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[loc.Key()] = &ObservationWindow{
		Observations: kept,
		FetchedAt:    fetchedAt,
	}
}

// GetFresh returns the cached observations for a location if they are younger than maxAge.
func (s *MemoryStore) GetFresh(loc weather.Location, now time.Time) ([]weather.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window, ok := s.data[loc.Key()]
	if !ok || len(window.Observations) == 0 {
		return nil, ErrNotFound
	}
	if s.maxAge > 0 && now.Sub(window.FetchedAt) > s.maxAge {
		return nil, ErrStale
	}

	out := make([]weather.Observation, len(window.Observations))
	copy(out, window.Observations)
	return out, nil
}

