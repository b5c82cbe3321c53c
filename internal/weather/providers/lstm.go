package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/i474232898/farmer-weather-forecast/internal/weather"
	"github.com/sony/gobreaker"
)

// ModelInfo describes one location model served by the inference service.
type ModelInfo struct {
	Location string `json:"location"`
	Model    string `json:"model"`
	Version  string `json:"version"`
}

// LSTMClient implements weather.Predictor against the LSTM inference service.
// The model manifest is loaded once at construction and is read-only afterwards.
type LSTMClient struct {
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	models  map[string]ModelInfo
}

// NewLSTMClient loads the model manifest from the inference service.
// It fails if the service is unreachable or serves no models.
func NewLSTMClient(ctx context.Context, client *http.Client, baseURL string) (*LSTMClient, error) {
	if baseURL == "" {
		return nil, errors.New("lstm: inference service url is not configured")
	}

	c := &LSTMClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: DefaultBackoff,
		},
		circuit: newCircuitBreaker("lstm"),
		models:  make(map[string]ModelInfo),
	}

	models, err := c.fetchModels(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, errors.New("lstm: inference service has no models loaded")
	}
	for _, m := range models {
		c.models[weather.Location{Name: m.Location}.Key()] = m
	}

	return c, nil
}

func (c *LSTMClient) Name() string {
	return "lstm"
}

// Models returns the loaded manifest.
func (c *LSTMClient) Models() []ModelInfo {
	out := make([]ModelInfo, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	return out
}

func (c *LSTMClient) Supports(loc weather.Location) bool {
	_, ok := c.modelFor(loc)
	return ok
}

// modelFor looks a location up by its name first, then by each alias.
func (c *LSTMClient) modelFor(loc weather.Location) (ModelInfo, bool) {
	if m, ok := c.models[loc.Key()]; ok {
		return m, true
	}
	for _, alias := range loc.Aliases {
		if m, ok := c.models[weather.Location{Name: alias}.Key()]; ok {
			return m, true
		}
	}
	return ModelInfo{}, false
}

func (c *LSTMClient) fetchModels(ctx context.Context) ([]ModelInfo, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, c.baseURL+"/models", nil)
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("lstm: get models: %w", err)
	}
	defer resp.Body.Close()

	var models []ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return nil, fmt.Errorf("lstm: decode models: %w", err)
	}
	return models, nil
}

type predictRequest struct {
	Location     string                `json:"location"`
	Model        string                `json:"model,omitempty"`
	StartDate    weather.Date          `json:"start_date"`
	Days         int                   `json:"days"`
	Observations []weather.Observation `json:"observations"`
}

type predictResponse struct {
	Predictions []weather.DailyPrediction `json:"predictions"`
}

// Predict implements weather.Predictor.
func (c *LSTMClient) Predict(ctx context.Context, in weather.PredictInput) ([]weather.DailyPrediction, error) {
	info, ok := c.modelFor(in.Location)
	if !ok {
		return nil, fmt.Errorf("%w: no lstm model for %s", weather.ErrUnsupportedLocation, in.Location.Name)
	}

	body, err := json.Marshal(predictRequest{
		Location:     info.Location,
		Model:        info.Model,
		StartDate:    in.Start,
		Days:         in.Days,
		Observations: in.Observations,
	})
	if err != nil {
		return nil, fmt.Errorf("lstm: marshal request: %w", err)
	}

	buildRequest := func() (*http.Request, error) {
		req, err := http.NewRequest(http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	resp, err := doRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, classifyPredictError(ctx, in.Location, err)
	}
	defer resp.Body.Close()

	var result predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("lstm: decode predictions: %w", err)
	}

	return result.Predictions, nil
}

func classifyPredictError(ctx context.Context, loc weather.Location, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("lstm: %w", err)
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: inference service has no model for %s", weather.ErrUnsupportedLocation, loc.Name)
		default:
			return fmt.Errorf("lstm: predict %s: %w", loc.Name, err)
		}
	}

	// Transport failures, 5xx and an open breaker all mean no model is reachable.
	return fmt.Errorf("%w: lstm: %v", weather.ErrModelNotReady, err)
}
