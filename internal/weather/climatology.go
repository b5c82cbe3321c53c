package weather

import (
	"context"
	"fmt"
	"math"
)

// climatologyWindow is how many of the most recent observations feed the baseline.
const climatologyWindow = 14

// ClimatologyPredictor is a local baseline that projects the mean of the most
// recent observations across the horizon. It lets the API serve without the
// LSTM inference service.
type ClimatologyPredictor struct {
	supported map[string]struct{}
}

// NewClimatologyPredictor supports every given location.
func NewClimatologyPredictor(locations []Location) *ClimatologyPredictor {
	p := &ClimatologyPredictor{supported: make(map[string]struct{}, len(locations))}
	for _, loc := range locations {
		p.supported[loc.Key()] = struct{}{}
	}
	return p
}

func (p *ClimatologyPredictor) Name() string {
	return "climatology"
}

func (p *ClimatologyPredictor) Supports(loc Location) bool {
	_, ok := p.supported[loc.Key()]
	return ok
}

func (p *ClimatologyPredictor) Predict(ctx context.Context, in PredictInput) ([]DailyPrediction, error) {
	if !p.Supports(in.Location) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLocation, in.Location.Name)
	}
	if len(in.Observations) == 0 {
		return nil, fmt.Errorf("%w: no observations for %s", ErrDataUnavailable, in.Location.Name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	window := in.Observations
	if len(window) > climatologyWindow {
		window = window[len(window)-climatologyWindow:]
	}

	var sumMax, sumMin, sumRain float64
	for _, o := range window {
		sumMax += o.TempMax
		sumMin += o.TempMin
		sumRain += o.Rainfall
	}
	n := float64(len(window))

	preds := make([]DailyPrediction, in.Days)
	for i := range preds {
		preds[i] = DailyPrediction{
			Date:     in.Start.AddDays(i),
			TempMax:  round1(sumMax / n),
			TempMin:  round1(sumMin / n),
			Rainfall: round1(sumRain / n),
		}
	}

	return preds, nil
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
