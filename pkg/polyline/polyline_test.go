package polyline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	track := []Point{
		{Lat: 38.5, Lng: -120.2},
		{Lat: 40.7, Lng: -120.95},
		{Lat: 43.252, Lng: -126.453},
	}

	encoded := Encode(track)
	// Reference string from the algorithm documentation.
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded := Decode(encoded)
	require.Len(t, decoded, len(track))
	for i := range track {
		assert.InDelta(t, track[i].Lat, decoded[i].Lat, 1e-5)
		assert.InDelta(t, track[i].Lng, decoded[i].Lng, 1e-5)
	}
}

func TestEncodeEmpty(t *testing.T) {
	assert.Empty(t, Encode(nil))
	assert.Nil(t, Decode(""))
}

func TestEncodeNegativeCoordinates(t *testing.T) {
	track := []Point{
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: -33.8700, Lng: 151.2100},
	}

	decoded := Decode(Encode(track))
	require.Len(t, decoded, 2)
	assert.InDelta(t, -33.8688, decoded[0].Lat, 1e-5)
	assert.InDelta(t, 151.2093, decoded[0].Lng, 1e-5)
}

func TestLengthKm(t *testing.T) {
	assert.Zero(t, LengthKm(nil))
	assert.Zero(t, LengthKm([]Point{{Lat: 1, Lng: 1}}))

	// One degree of latitude is roughly 111 km.
	track := []Point{
		{Lat: 35.0, Lng: -100.0},
		{Lat: 36.0, Lng: -100.0},
	}
	assert.InDelta(t, 111.2, LengthKm(track), 0.5)
}

func TestThin(t *testing.T) {
	// Points roughly 111 m apart along a meridian.
	var dense []Point
	for i := 0; i < 11; i++ {
		dense = append(dense, Point{Lat: 35.0 + float64(i)*0.001, Lng: -100.0})
	}

	thinned := Thin(dense, 300)

	assert.Less(t, len(thinned), len(dense))
	assert.Equal(t, dense[0], thinned[0])
	assert.Equal(t, dense[len(dense)-1], thinned[len(thinned)-1])

	// Interior survivors honor the gap.
	for i := 1; i < len(thinned)-1; i++ {
		gap := LengthKm([]Point{thinned[i-1], thinned[i]}) * 1000
		assert.GreaterOrEqual(t, gap, 300.0)
	}
}

func TestThinShortTrack(t *testing.T) {
	track := []Point{{Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
	assert.Equal(t, track, Thin(track, 100))
}
