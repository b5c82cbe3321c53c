package weather

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRegistryResolve(t *testing.T) {
	reg, err := NewRegistry([]Location{bangalore, mysore}, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name     string
		query    string
		lat, lon float64
		want     string
		by       ResolvedBy
		wantErr  error
	}{
		{name: "exact name", query: "Bangalore", lat: 0, lon: 0, want: "Bangalore", by: ResolvedByName},
		{name: "alias any case", query: "  BENGALURU ", lat: 0, lon: 0, want: "Bangalore", by: ResolvedByName},
		{name: "nearby coordinates", query: "Srirangapatna", lat: 12.4216, lon: 76.6930, want: "Mysore", by: ResolvedByCoordinates},
		{name: "too far", query: "Chennai", lat: 13.0827, lon: 80.2707, wantErr: ErrLocationNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, by, err := reg.Resolve(tt.query, tt.lat, tt.lon)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if loc.Name != tt.want || by != tt.by {
				t.Fatalf("got %s by %s, want %s by %s", loc.Name, by, tt.want, tt.by)
			}
		})
	}
}

func TestRegistryNoCoordinateFallback(t *testing.T) {
	reg, err := NewRegistry([]Location{bangalore}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := reg.Resolve("Whitefield", 12.9698, 77.75); !errors.Is(err, ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound with fallback disabled, got %v", err)
	}
}

func TestRegistryRejectsBadLocations(t *testing.T) {
	if _, err := NewRegistry([]Location{{Name: "Nowhere", Latitude: 91}}, 50); err == nil {
		t.Error("expected error for out-of-range latitude")
	}
	if _, err := NewRegistry([]Location{{Name: "  "}}, 50); err == nil {
		t.Error("expected error for empty name")
	}
	dup := Location{Name: "Bengaluru", Latitude: 13, Longitude: 77}
	if _, err := NewRegistry([]Location{bangalore, dup}, 50); err == nil {
		t.Error("expected error for duplicate alias")
	}
}

type memStore struct {
	obs       []Observation
	fetchedAt time.Time
	maxAge    time.Duration
}

func (m *memStore) SaveObservations(loc Location, obs []Observation, fetchedAt time.Time) {
	m.obs, m.fetchedAt = obs, fetchedAt
}

func (m *memStore) GetFresh(loc Location, now time.Time) ([]Observation, error) {
	if m.obs == nil || now.Sub(m.fetchedAt) > m.maxAge {
		return nil, errors.New("miss")
	}
	return m.obs, nil
}

func TestCachingSource(t *testing.T) {
	src := &stubSource{obs: someObservations()}
	st := &memStore{maxAge: time.Hour}
	cs := NewCachingSource(src, st)
	now := fixedNow
	cs.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := cs.Fetch(context.Background(), bangalore); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if src.calls.Load() != 1 {
		t.Fatalf("expected 1 upstream call while fresh, got %d", src.calls.Load())
	}

	now = now.Add(2 * time.Hour)
	if _, err := cs.Fetch(context.Background(), bangalore); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls.Load() != 2 {
		t.Fatalf("expected refetch after expiry, got %d calls", src.calls.Load())
	}

	if err := cs.Refresh(context.Background(), bangalore); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if src.calls.Load() != 3 {
		t.Fatalf("refresh should always hit upstream, got %d calls", src.calls.Load())
	}
}

func TestCachingSourceEmpty(t *testing.T) {
	cs := NewCachingSource(&stubSource{}, &memStore{maxAge: time.Hour})
	if _, err := cs.Fetch(context.Background(), bangalore); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable for empty upstream, got %v", err)
	}
}

func TestClimatologyPredictor(t *testing.T) {
	p := NewClimatologyPredictor([]Location{bangalore})

	obs := make([]Observation, 20)
	for i := range obs {
		obs[i] = Observation{Date: NewDate(fixedNow).AddDays(i - 20), TempMax: 30, TempMin: 20, Rainfall: 2}
	}
	// Older than the averaging window; must not affect the result.
	obs[0].TempMax = 100

	start := NewDate(fixedNow).AddDays(1)
	preds, err := p.Predict(context.Background(), PredictInput{Location: bangalore, Observations: obs, Start: start, Days: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(preds) != 30 {
		t.Fatalf("expected 30 predictions, got %d", len(preds))
	}
	if preds[0].TempMax != 30 || preds[0].TempMin != 20 || preds[0].Rainfall != 2 {
		t.Fatalf("unexpected prediction %+v", preds[0])
	}
	if !preds[29].Date.Equal(start.AddDays(29).Time) {
		t.Fatalf("last date = %s", preds[29].Date)
	}

	if _, err := p.Predict(context.Background(), PredictInput{Location: mysore, Observations: obs, Start: start, Days: 30}); !errors.Is(err, ErrUnsupportedLocation) {
		t.Fatalf("expected ErrUnsupportedLocation, got %v", err)
	}
}
