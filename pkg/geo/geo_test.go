package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 45.0033, lng1: -109.4667,
			lat2: 45.0033, lng2: -109.4667,
			want: 0, tolerance: 0.0001,
		},
		{
			name: "chicago to st louis",
			lat1: 41.8781, lng1: -87.6298,
			lat2: 38.6270, lng2: -90.1994,
			want: 420, tolerance: 20,
		},
		{
			name: "red lodge to beartooth pass",
			lat1: 45.0167, lng1: -109.2667,
			lat2: 45.0033, lng2: -109.4667,
			want: 15.8, tolerance: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("DistanceKm() = %v, want %v ± %v", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestDistanceMiles(t *testing.T) {
	// San Francisco to Los Angeles, roughly 347 miles great-circle.
	got := Distance(37.7749, -122.4194, 34.0522, -118.2437, Miles)
	if got < 330 || got > 360 {
		t.Errorf("Distance() in miles = %v, want ~347", got)
	}

	// The mile figure must be shorter than the km figure for the same pair.
	km := Distance(37.7749, -122.4194, 34.0522, -118.2437, Kilometers)
	if got >= km {
		t.Errorf("miles (%v) should be numerically smaller than km (%v)", got, km)
	}
}

func TestDistanceMeters(t *testing.T) {
	d := DistanceMeters(45.0033, -109.4667, 45.0033, -109.4667)
	if d != 0 {
		t.Errorf("DistanceMeters() for identical points = %v, want 0", d)
	}

	// Roughly 111km per degree of latitude.
	d = DistanceMeters(45.0, -109.0, 46.0, -109.0)
	if math.Abs(d-111195) > 500 {
		t.Errorf("DistanceMeters() one degree latitude = %v, want ~111195", d)
	}
}

func TestDistanceNaNPropagates(t *testing.T) {
	if d := DistanceKm(math.NaN(), 0, 0, 0); !math.IsNaN(d) {
		t.Errorf("DistanceKm() with NaN input = %v, want NaN", d)
	}
}
