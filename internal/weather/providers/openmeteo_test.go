package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/i474232898/farmer-weather-forecast/internal/weather"
)

func TestOpenMeteoFetch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"latitude":  q.Get("latitude"),
			"longitude": q.Get("longitude"),
			"past_days": q.Get("past_days"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"daily":{
			"time":["2026-10-12","2026-10-13","2026-10-14","2026-10-15"],
			"temperature_2m_max":[28.4,29.1,null,27.0],
			"temperature_2m_min":[18.2,19.0,18.5,17.9],
			"precipitation_sum":[0.0,4.2,1.0,0.0]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, 30)
	p.now = func() time.Time { return time.Date(2026, 10, 15, 6, 0, 0, 0, time.UTC) }

	obs, err := p.Fetch(context.Background(), weather.Location{Name: "Bangalore", Latitude: 12.9716, Longitude: 77.5946})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery["latitude"] != "12.9716" || gotQuery["longitude"] != "77.5946" || gotQuery["past_days"] != "30" {
		t.Errorf("unexpected query %v", gotQuery)
	}

	// 10-14 has a null value and 10-15 is today; both are skipped.
	if len(obs) != 2 {
		t.Fatalf("expected 2 observations, got %d: %+v", len(obs), obs)
	}
	if obs[1].Date.String() != "2026-10-13" || obs[1].TempMax != 29.1 || obs[1].Rainfall != 4.2 {
		t.Errorf("unexpected observation %+v", obs[1])
	}
}

func TestOpenMeteoUpstreamFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, 30)

	_, err := p.Fetch(context.Background(), weather.Location{Name: "Kolar", Latitude: 13.1, Longitude: 78.1})
	if !errors.Is(err, weather.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected one retry (2 calls), got %d", calls)
	}
}

func TestOpenMeteoMismatchedSeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"daily":{"time":["2026-10-12"],"temperature_2m_max":[],"temperature_2m_min":[18],"precipitation_sum":[0]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteoProvider(srv.Client(), srv.URL, 30)
	if _, err := p.Fetch(context.Background(), weather.Location{Name: "Kolar"}); !errors.Is(err, weather.ErrDataUnavailable) {
		t.Fatalf("expected ErrDataUnavailable, got %v", err)
	}
}
