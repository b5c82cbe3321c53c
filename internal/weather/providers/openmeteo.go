package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/farmer-weather-forecast/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	openMeteoBaseURL = "https://api.open-meteo.com/v1/forecast"

	// Open-Meteo serves at most 92 past days from the forecast endpoint.
	maxPastDays = 92
)

// OpenMeteoProvider implements weather.ObservationSource for Open-Meteo.
// It requests the recent daily history (past_days) for a location's coordinates.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	pastDays int
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	now      func() time.Time
}

func NewOpenMeteoProvider(client *http.Client, baseURL string, pastDays int) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = openMeteoBaseURL
	}
	if pastDays <= 0 || pastDays > maxPastDays {
		pastDays = maxPastDays
	}

	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  baseURL,
		pastDays: pastDays,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("openmeteo"),
		now:     time.Now,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

type openMeteoDaily struct {
	Time             []string   `json:"time"`
	TemperatureMax   []*float64 `json:"temperature_2m_max"`
	TemperatureMin   []*float64 `json:"temperature_2m_min"`
	PrecipitationSum []*float64 `json:"precipitation_sum"`
}

// Fetch returns completed days only, oldest first. Days with missing values are skipped.
func (p *OpenMeteoProvider) Fetch(ctx context.Context, loc weather.Location) ([]weather.Observation, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
		values.Set("longitude", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
		values.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum")
		values.Set("past_days", strconv.Itoa(p.pastDays))
		values.Set("forecast_days", "1")
		values.Set("timezone", "UTC")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: openmeteo: %v", weather.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	var payload struct {
		Daily openMeteoDaily `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: openmeteo: decode: %v", weather.ErrDataUnavailable, err)
	}

	return p.toObservations(payload.Daily)
}

func (p *OpenMeteoProvider) toObservations(d openMeteoDaily) ([]weather.Observation, error) {
	n := len(d.Time)
	if len(d.TemperatureMax) != n || len(d.TemperatureMin) != n || len(d.PrecipitationSum) != n {
		return nil, fmt.Errorf("%w: openmeteo: daily series have mismatched lengths", weather.ErrDataUnavailable)
	}

	today := weather.NewDate(p.now())
	obs := make([]weather.Observation, 0, n)

	for i, ts := range d.Time {
		date, err := weather.ParseDate(ts)
		if err != nil {
			return nil, fmt.Errorf("%w: openmeteo: %v", weather.ErrDataUnavailable, err)
		}
		if !date.Before(today.Time) {
			continue
		}
		if d.TemperatureMax[i] == nil || d.TemperatureMin[i] == nil || d.PrecipitationSum[i] == nil {
			continue
		}

		obs = append(obs, weather.Observation{
			Date:     date,
			TempMax:  *d.TemperatureMax[i],
			TempMin:  *d.TemperatureMin[i],
			Rainfall: *d.PrecipitationSum[i],
		})
	}

	return obs, nil
}
