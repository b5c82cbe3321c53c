package geo

import (
	"context"
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"same point", 12.9716, 77.5946, 12.9716, 77.5946, 0},
		{"bangalore to mysore", 12.9716, 77.5946, 12.2958, 76.6394, 128.0},
		{"one degree of latitude", 0, 0, 1, 0, 111.19},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > 1 {
				t.Fatalf("DistanceKm = %.2f, want ~%.2f", got, tt.want)
			}
		})
	}
}

func TestValidCoordinates(t *testing.T) {
	if !ValidCoordinates(-90, 180) || !ValidCoordinates(90, -180) {
		t.Error("bounds should be inclusive")
	}
	if ValidCoordinates(200, 0) || ValidCoordinates(0, -180.1) {
		t.Error("out of range coordinates accepted")
	}
}

func TestGoogleGeocoderRequiresKey(t *testing.T) {
	if _, err := NewGoogleGeocoder("").ForwardGeocode(context.Background(), "Kolar", "Karnataka", "India"); err == nil {
		t.Fatal("expected error without api key")
	}
}
