package weather

// Summarize aggregates a prediction sequence into a WeatherSummary.
// Temperatures are averaged, rainfall is summed, and a day counts as rainy when rainfall > 0.
func Summarize(preds []DailyPrediction) WeatherSummary {
	if len(preds) == 0 {
		return WeatherSummary{}
	}

	var (
		sumMax   float64
		sumMin   float64
		sumRain  float64
		rainDays int
	)

	maxTemp := preds[0].TempMax
	minTemp := preds[0].TempMin

	for _, p := range preds {
		sumMax += p.TempMax
		sumMin += p.TempMin
		sumRain += p.Rainfall

		if p.Rainfall > 0 {
			rainDays++
		}
		if p.TempMax > maxTemp {
			maxTemp = p.TempMax
		}
		if p.TempMin < minTemp {
			minTemp = p.TempMin
		}
	}

	n := float64(len(preds))

	return WeatherSummary{
		AvgTempMax:    sumMax / n,
		AvgTempMin:    sumMin / n,
		TotalRainfall: sumRain,
		MaxTemp:       maxTemp,
		MinTemp:       minTemp,
		DaysWithRain:  rainDays,
	}
}
