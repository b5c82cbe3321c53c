package store

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/farmer-weather-forecast/internal/weather"
)

func observations(n int) []weather.Observation {
	start := weather.NewDate(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	obs := make([]weather.Observation, n)
	for i := range obs {
		obs[i] = weather.Observation{Date: start.AddDays(i), TempMax: 28, TempMin: 18, Rainfall: float64(i)}
	}
	return obs
}

func TestMemoryStoreFreshness(t *testing.T) {
	s := NewMemoryStore(0, time.Hour)
	loc := weather.Location{Name: "Bangalore"}
	now := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)

	if _, err := s.GetFresh(loc, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	s.SaveObservations(loc, observations(5), now)

	got, err := s.GetFresh(weather.Location{Name: " bangalore "}, now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 observations, got %d", len(got))
	}

	if _, err := s.GetFresh(loc, now.Add(2*time.Hour)); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}
}

func TestMemoryStoreRetention(t *testing.T) {
	s := NewMemoryStore(3, 0)
	loc := weather.Location{Name: "Kolar"}
	now := time.Now()

	s.SaveObservations(loc, observations(10), now)

	got, err := s.GetFresh(loc, now.Add(1000*time.Hour))
	if err != nil {
		t.Fatalf("zero max age should never go stale: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 observations, got %d", len(got))
	}
	if got[0].Rainfall != 7 || got[2].Rainfall != 9 {
		t.Fatalf("expected the newest observations, got %+v", got)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore(0, 0)
	loc := weather.Location{Name: "Mandya"}
	in := observations(2)
	s.SaveObservations(loc, in, time.Now())

	in[0].TempMax = 99
	got, _ := s.GetFresh(loc, time.Now())
	got[1].TempMax = 99

	again, _ := s.GetFresh(loc, time.Now())
	if again[0].TempMax != 28 || again[1].TempMax != 28 {
		t.Fatalf("store must not share slices with callers: %+v", again)
	}
}
