package geo

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kelvins/geocoder"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points using the haversine formula.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

// ValidCoordinates reports whether lat/lon are within geographic ranges.
func ValidCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Result contains location data returned by a geocoding provider.
type Result struct {
	Lat float64
	Lon float64
}

// Geocoder converts a place name into coordinates.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, name, state, country string) (Result, error)
}

var errNoAPIKey = errors.New("geocoder api key is not configured")

// GoogleGeocoder resolves place names through the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey string
}

func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	return &GoogleGeocoder{apiKey: apiKey}
}

func (g *GoogleGeocoder) ForwardGeocode(ctx context.Context, name, state, country string) (Result, error) {
	if g.apiKey == "" {
		return Result{}, errNoAPIKey
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// The geocoder package keeps its key in a package-level variable.
	geocoder.ApiKey = g.apiKey

	loc, err := geocoder.Geocoding(geocoder.Address{
		City:    name,
		State:   state,
		Country: country,
	})
	if err != nil {
		return Result{}, fmt.Errorf("geocode %q: %w", name, err)
	}
	if !ValidCoordinates(loc.Latitude, loc.Longitude) {
		return Result{}, fmt.Errorf("geocode %q: coordinates out of range", name)
	}

	return Result{Lat: loc.Latitude, Lon: loc.Longitude}, nil
}
