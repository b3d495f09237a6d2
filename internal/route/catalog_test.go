package route

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssoward/evyroad/internal/trip"
)

func TestCatalogList(t *testing.T) {
	c := NewCatalog()

	routes := c.List()
	require.Len(t, routes, 3)
	assert.Equal(t, "route-66-classic", routes[0].ID)
	assert.Equal(t, "beartooth-pass", routes[1].ID)
	assert.Equal(t, "blue-ridge-parkway", routes[2].ID)
}

func TestCatalogGet(t *testing.T) {
	c := NewCatalog()

	r, err := c.Get("beartooth-pass")
	require.NoError(t, err)
	assert.Equal(t, "Beartooth Pass Highway", r.Name)
	assert.Equal(t, 3, r.RequiredWaypointCount())
	assert.Equal(t, 50.0, r.Criteria.MaxDeviationRadius)
	require.NotNil(t, r.Seasonal)
	assert.Equal(t, time.May, r.Seasonal.Open.Month)

	_, err = c.Get("nonexistent")
	assert.ErrorIs(t, err, ErrRouteNotFound)
}

func TestCatalogImmutability(t *testing.T) {
	c := NewCatalog()

	r, err := c.Get("route-66-classic")
	require.NoError(t, err)
	r.Waypoints[0].Name = "tampered"
	r.Rewards[trip.LevelBronze] = Reward{Badge: "tampered"}

	again, err := c.Get("route-66-classic")
	require.NoError(t, err)
	assert.Equal(t, "Chicago, IL", again.Waypoints[0].Name)
	assert.Equal(t, "Route 66 Explorer", again.Rewards[trip.LevelBronze].Badge)
}

func TestFindWaypoint(t *testing.T) {
	c := NewCatalog()
	r, err := c.Get("blue-ridge-parkway")
	require.NoError(t, err)

	byID, ok := r.FindWaypoint("wp-asheville")
	require.True(t, ok)
	assert.Equal(t, "Asheville, NC", byID.Name)

	byName, ok := r.FindWaypoint("Mount Mitchell")
	require.True(t, ok)
	assert.False(t, byName.IsRequired)

	_, ok = r.FindWaypoint("nowhere")
	assert.False(t, ok)
}

func TestSeasonalWindow(t *testing.T) {
	w := SeasonalWindow{
		Open:  MonthDay{Month: time.May, Day: 15},
		Close: MonthDay{Month: time.October, Day: 15},
	}

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"midsummer", time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC), true},
		{"opening day", time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), true},
		{"closing day", time.Date(2025, 10, 15, 18, 0, 0, 0, time.UTC), true},
		{"day before opening", time.Date(2025, 5, 14, 23, 0, 0, 0, time.UTC), false},
		{"midwinter", time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, w.Contains(tt.at))
		})
	}
}

func TestCatalogAvailability(t *testing.T) {
	c := NewCatalog()

	winter := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	entries := c.Availability(winter)
	require.Len(t, entries, 3)

	byID := map[string]Availability{}
	for _, e := range entries {
		byID[e.ID] = e
	}

	// Year-round routes stay available; the seasonal one closes.
	assert.True(t, byID["route-66-classic"].IsAvailable)
	assert.True(t, byID["blue-ridge-parkway"].IsAvailable)
	assert.False(t, byID["beartooth-pass"].IsAvailable)

	assert.Equal(t, 4, byID["route-66-classic"].WaypointCount)
	assert.Equal(t, 3, byID["blue-ridge-parkway"].RequiredWaypoints)
	assert.Equal(t, []string{"bronze", "silver", "gold"}, byID["beartooth-pass"].Rewards)

	summer := time.Date(2025, 7, 4, 12, 0, 0, 0, time.UTC)
	for _, e := range c.Availability(summer) {
		assert.True(t, e.IsAvailable, e.ID)
	}
}
