// Package polyline encodes GPS tracks with Google's polyline algorithm,
// documented at https://developers.google.com/maps/documentation/utilities/polylinealgorithm.
// Map clients render a trip's recorded track from this compact form
// instead of the full waypoint list.
package polyline

import (
	"math"

	"github.com/ssoward/evyroad/pkg/geo"
)

// Point is one position on a track.
type Point struct {
	Lat float64
	Lng float64
}

// Encode encodes a track at the standard 5-decimal precision.
func Encode(points []Point) string {
	if len(points) == 0 {
		return ""
	}

	encoded := make([]byte, 0, len(points)*4)
	prevLat := 0
	prevLng := 0

	for _, p := range points {
		lat := int(math.Round(p.Lat * 1e5))
		lng := int(math.Round(p.Lng * 1e5))

		encoded = encodeValue(encoded, lat-prevLat)
		encoded = encodeValue(encoded, lng-prevLng)

		prevLat = lat
		prevLng = lng
	}

	return string(encoded)
}

// Decode decodes an encoded track back into points.
func Decode(encoded string) []Point {
	if encoded == "" {
		return nil
	}

	var points []Point
	index := 0
	lat := 0
	lng := 0

	for index < len(encoded) {
		latDelta, next := decodeValue(encoded, index)
		index = next
		lat += latDelta

		lngDelta, next := decodeValue(encoded, index)
		index = next
		lng += lngDelta

		points = append(points, Point{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return points
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	buf = append(buf, byte(value)+63)

	return buf
}

func decodeValue(encoded string, index int) (int, int) {
	shift := 0
	result := 0

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index
	}
	return result >> 1, index
}

// LengthKm returns the track length in kilometers.
func LengthKm(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += geo.DistanceKm(points[i-1].Lat, points[i-1].Lng, points[i].Lat, points[i].Lng)
	}
	return total
}

// Thin drops intermediate points closer than minGapMeters to the last
// kept point. The first and last points always survive; map previews
// use this to cap payload size on dense tracks.
func Thin(points []Point, minGapMeters float64) []Point {
	if len(points) <= 2 || minGapMeters <= 0 {
		return points
	}

	thinned := []Point{points[0]}
	for i := 1; i < len(points)-1; i++ {
		last := thinned[len(thinned)-1]
		if geo.DistanceMeters(last.Lat, last.Lng, points[i].Lat, points[i].Lng) >= minGapMeters {
			thinned = append(thinned, points[i])
		}
	}
	return append(thinned, points[len(points)-1])
}
