// Package geo provides great-circle distance calculations for GPS coordinates.
package geo

import "math"

// Unit selects the output unit for distance calculations.
type Unit int

const (
	// Kilometers is the default unit used by trip metrics.
	Kilometers Unit = iota
	// Miles is used by the live-tracking display paths.
	Miles
)

// Earth radii per unit. Both values are in wide use for Haversine
// implementations and must not be mixed within a single call site.
const (
	earthRadiusKm = 6371
	earthRadiusMi = 3959
)

// Distance returns the great-circle distance between two coordinates
// using the Haversine formula. Latitudes and longitudes are in degrees.
// Out-of-range inputs are not rejected; NaN inputs propagate.
func Distance(lat1, lng1, lat2, lng2 float64, unit Unit) float64 {
	radius := float64(earthRadiusKm)
	if unit == Miles {
		radius = earthRadiusMi
	}

	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return radius * c
}

// DistanceKm returns the great-circle distance in kilometers.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	return Distance(lat1, lng1, lat2, lng2, Kilometers)
}

// DistanceMeters returns the great-circle distance in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	return DistanceKm(lat1, lng1, lat2, lng2) * 1000
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
