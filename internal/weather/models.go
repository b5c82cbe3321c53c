package weather

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire.
const DateLayout = "2006-01-02"

// Location represents a named place the predictor can forecast for.
// Locations are registered at startup and never mutated afterwards.
type Location struct {
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return normalizeName(l.Name)
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Date is a calendar day (UTC midnight) that marshals as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its UTC calendar day.
func NewDate(t time.Time) Date {
	t = t.UTC()
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// Observation is one day of recorded weather used as model input.
type Observation struct {
	Date     Date    `json:"date"`
	TempMax  float64 `json:"temp_max"`
	TempMin  float64 `json:"temp_min"`
	Rainfall float64 `json:"rainfall"`
}

// DailyPrediction is one forecast day.
// TempMin <= TempMax and Rainfall >= 0 hold for every prediction returned to clients.
type DailyPrediction struct {
	Date     Date    `json:"date"`
	TempMax  float64 `json:"temp_max"`
	TempMin  float64 `json:"temp_min"`
	Rainfall float64 `json:"rainfall"`
}

// Severity is an ordered alert level.
type Severity int

const (
	SeverityLow Severity = iota + 1
	SeverityMedium
	SeverityHigh
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	default:
		return "unknown"
	}
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return err
	}
	switch str {
	case "low":
		*s = SeverityLow
	case "medium":
		*s = SeverityMedium
	case "high":
		*s = SeverityHigh
	default:
		return fmt.Errorf("unknown severity %q", str)
	}
	return nil
}

// AlertType tags the category of an alert.
type AlertType string

const (
	AlertHeat      AlertType = "heat"
	AlertFrost     AlertType = "frost"
	AlertHeavyRain AlertType = "heavy_rain"
	AlertFlood     AlertType = "flood"
	AlertDrySpell  AlertType = "dry_spell"
)

// Alert is a warning derived from a prediction sequence.
type Alert struct {
	Type     AlertType `json:"type"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	Date     *Date     `json:"date,omitempty"`
}

// WeatherSummary aggregates a prediction sequence.
type WeatherSummary struct {
	AvgTempMax    float64 `json:"avg_temp_max"`
	AvgTempMin    float64 `json:"avg_temp_min"`
	TotalRainfall float64 `json:"total_rainfall"`
	MaxTemp       float64 `json:"max_temp"`
	MinTemp       float64 `json:"min_temp"`
	DaysWithRain  int     `json:"days_with_rain"`
}

// ResolvedBy records how a request's location was matched.
type ResolvedBy string

const (
	ResolvedByName        ResolvedBy = "name"
	ResolvedByCoordinates ResolvedBy = "coordinates"
)

// ForecastQuery is a validated forecast request.
type ForecastQuery struct {
	Location  string
	Latitude  float64
	Longitude float64
}

// Forecast is the payload returned for a successful forecast request.
type Forecast struct {
	Location          Location          `json:"location"`
	RequestedLocation string            `json:"requested_location"`
	ResolvedBy        ResolvedBy        `json:"resolved_by"`
	Model             string            `json:"model"`
	ForecastDays      int               `json:"forecast_days"`
	Predictions       []DailyPrediction `json:"predictions"`
	Summary           WeatherSummary    `json:"summary"`
	Alerts            []Alert           `json:"alerts"`
}
