package weather

import (
	"fmt"
	"math"

	"github.com/i474232898/farmer-weather-forecast/internal/geo"
)

// Registry is the immutable set of locations the service forecasts for.
type Registry struct {
	locations []Location
	byName    map[string]int
	radiusKm  float64
}

// NewRegistry indexes locations by name and alias. Coordinate fallback only
// matches locations within radiusKm of the requested point; radiusKm <= 0 disables it.
func NewRegistry(locations []Location, radiusKm float64) (*Registry, error) {
	r := &Registry{
		locations: make([]Location, 0, len(locations)),
		byName:    make(map[string]int),
		radiusKm:  radiusKm,
	}

	for _, loc := range locations {
		if normalizeName(loc.Name) == "" {
			return nil, fmt.Errorf("location with empty name")
		}
		if !geo.ValidCoordinates(loc.Latitude, loc.Longitude) {
			return nil, fmt.Errorf("location %s: coordinates out of range", loc.Name)
		}

		idx := len(r.locations)
		r.locations = append(r.locations, loc)

		for _, name := range append([]string{loc.Name}, loc.Aliases...) {
			key := normalizeName(name)
			if key == "" {
				continue
			}
			if prev, dup := r.byName[key]; dup {
				return nil, fmt.Errorf("location name %q registered twice (%s, %s)", name, r.locations[prev].Name, loc.Name)
			}
			r.byName[key] = idx
		}
	}

	return r, nil
}

// Locations returns a copy of the registered locations.
func (r *Registry) Locations() []Location {
	out := make([]Location, len(r.locations))
	copy(out, r.locations)
	return out
}

// Resolve matches by name or alias first, then falls back to the nearest
// registered location within the radius of the given coordinates.
func (r *Registry) Resolve(name string, lat, lon float64) (Location, ResolvedBy, error) {
	if idx, ok := r.byName[normalizeName(name)]; ok {
		return r.locations[idx], ResolvedByName, nil
	}

	if r.radiusKm > 0 {
		best := -1
		bestDist := math.MaxFloat64
		for i, loc := range r.locations {
			d := geo.DistanceKm(lat, lon, loc.Latitude, loc.Longitude)
			if d < bestDist {
				best, bestDist = i, d
			}
		}
		if best >= 0 && bestDist <= r.radiusKm {
			return r.locations[best], ResolvedByCoordinates, nil
		}
	}

	return Location{}, "", fmt.Errorf("%w: %q", ErrLocationNotFound, name)
}
