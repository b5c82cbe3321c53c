package weather

import (
	"fmt"
	"sort"
)

// AlertRules holds the thresholds used to derive alerts from a forecast.
// Rainfall thresholds follow the IMD daily categories (mm/day).
// A zero threshold disables its rule. Frost thresholds may be negative.
type AlertRules struct {
	HeatMedium float64 // temp_max at or above
	HeatHigh   float64

	FrostLow    float64 // temp_min at or below
	FrostMedium float64
	FrostHigh   float64

	HeavyRain float64 // rainfall at or above
	Flood     float64

	// DrySpellDays is the number of consecutive dry days that raises a dry_spell alert.
	DrySpellDays int
}

// DefaultAlertRules are tuned for the Bangalore plateau.
var DefaultAlertRules = AlertRules{
	HeatMedium: 35,
	HeatHigh:   38,

	FrostLow:    12,
	FrostMedium: 8,
	FrostHigh:   4,

	HeavyRain: 64.5,
	Flood:     115.6,

	DrySpellDays: 14,
}

// Evaluate applies the rules to a date-ordered prediction sequence.
// The result is sorted by date, then by descending severity.
func (r AlertRules) Evaluate(preds []DailyPrediction) []Alert {
	alerts := make([]Alert, 0)

	dryRun := 0
	var dryStart Date

	for _, p := range preds {
		date := p.Date

		switch {
		case r.HeatHigh > 0 && p.TempMax >= r.HeatHigh:
			alerts = append(alerts, Alert{
				Type:     AlertHeat,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("Extreme heat expected: max %.1f°C. Irrigate early and shade livestock.", p.TempMax),
				Date:     &date,
			})
		case r.HeatMedium > 0 && p.TempMax >= r.HeatMedium:
			alerts = append(alerts, Alert{
				Type:     AlertHeat,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("High temperature expected: max %.1f°C.", p.TempMax),
				Date:     &date,
			})
		}

		switch {
		case r.FrostHigh != 0 && p.TempMin <= r.FrostHigh:
			alerts = append(alerts, Alert{
				Type:     AlertFrost,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("Frost risk: min %.1f°C. Protect sensitive crops overnight.", p.TempMin),
				Date:     &date,
			})
		case r.FrostMedium != 0 && p.TempMin <= r.FrostMedium:
			alerts = append(alerts, Alert{
				Type:     AlertFrost,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Cold night expected: min %.1f°C.", p.TempMin),
				Date:     &date,
			})
		case r.FrostLow != 0 && p.TempMin <= r.FrostLow:
			alerts = append(alerts, Alert{
				Type:     AlertFrost,
				Severity: SeverityLow,
				Message:  fmt.Sprintf("Cool night expected: min %.1f°C.", p.TempMin),
				Date:     &date,
			})
		}

		switch {
		case r.Flood > 0 && p.Rainfall >= r.Flood:
			alerts = append(alerts, Alert{
				Type:     AlertFlood,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("Very heavy rainfall of %.1f mm may cause flooding. Clear field drainage.", p.Rainfall),
				Date:     &date,
			})
		case r.HeavyRain > 0 && p.Rainfall >= r.HeavyRain:
			alerts = append(alerts, Alert{
				Type:     AlertHeavyRain,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("Heavy rainfall of %.1f mm expected. Postpone spraying and harvesting.", p.Rainfall),
				Date:     &date,
			})
		}

		if p.Rainfall > 0 {
			dryRun = 0
			continue
		}
		if dryRun == 0 {
			dryStart = date
		}
		dryRun++
		if r.DrySpellDays > 0 && dryRun == r.DrySpellDays {
			start := dryStart
			alerts = append(alerts, Alert{
				Type:     AlertDrySpell,
				Severity: SeverityMedium,
				Message:  fmt.Sprintf("No rain expected for %d consecutive days. Plan irrigation.", r.DrySpellDays),
				Date:     &start,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		di, dj := alerts[i].Date, alerts[j].Date
		if !di.Equal(dj.Time) {
			return di.Before(dj.Time)
		}
		return alerts[i].Severity > alerts[j].Severity
	})

	return alerts
}
