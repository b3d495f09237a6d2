package route

import (
	"time"

	"github.com/ssoward/evyroad/internal/trip"
)

// Catalog is the in-memory set of predefined routes. It is built once
// at startup and never mutated, so reads need no locking.
type Catalog struct {
	routes []PredefinedRoute
	byID   map[string]int
}

// NewCatalog builds the catalog from the built-in route data.
func NewCatalog() *Catalog {
	routes := predefinedRoutes()
	byID := make(map[string]int, len(routes))
	for i, r := range routes {
		byID[r.ID] = i
	}
	return &Catalog{routes: routes, byID: byID}
}

// List returns all routes in catalog order.
func (c *Catalog) List() []PredefinedRoute {
	out := make([]PredefinedRoute, len(c.routes))
	for i, r := range c.routes {
		out[i] = copyRoute(r)
	}
	return out
}

// Get returns the route with the given id or ErrRouteNotFound.
func (c *Catalog) Get(id string) (*PredefinedRoute, error) {
	i, ok := c.byID[id]
	if !ok {
		return nil, ErrRouteNotFound
	}
	r := copyRoute(c.routes[i])
	return &r, nil
}

// Availability is the listing entry with the seasonal check applied.
type Availability struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Difficulty        Difficulty      `json:"difficulty"`
	Distance          float64         `json:"distance"`
	WaypointCount     int             `json:"waypointCount"`
	RequiredWaypoints int             `json:"requiredWaypoints"`
	EstimatedTime     float64         `json:"estimatedTime"`
	IsAvailable       bool            `json:"isAvailable"`
	Seasonal          *SeasonalWindow `json:"seasonalAvailability,omitempty"`
	Rewards           []string        `json:"rewards"`
}

// Availability returns the certification-availability view of each
// route evaluated at the given time.
func (c *Catalog) Availability(now time.Time) []Availability {
	out := make([]Availability, 0, len(c.routes))
	for i := range c.routes {
		r := &c.routes[i]
		entry := Availability{
			ID:                r.ID,
			Name:              r.Name,
			Description:       r.Description,
			Difficulty:        r.Difficulty,
			Distance:          r.Distance,
			WaypointCount:     len(r.Waypoints),
			RequiredWaypoints: r.RequiredWaypointCount(),
			EstimatedTime:     r.Criteria.MinTimeSpent,
			IsAvailable:       r.AvailableAt(now),
			Rewards:           rewardLevels(r.Rewards),
		}
		if r.Seasonal != nil {
			w := *r.Seasonal
			entry.Seasonal = &w
		}
		out = append(out, entry)
	}
	return out
}

func rewardLevels(rewards map[trip.CertificationLevel]Reward) []string {
	levels := make([]string, 0, len(rewards))
	for _, level := range []trip.CertificationLevel{trip.LevelBronze, trip.LevelSilver, trip.LevelGold} {
		if _, ok := rewards[level]; ok {
			levels = append(levels, string(level))
		}
	}
	return levels
}

func copyRoute(r PredefinedRoute) PredefinedRoute {
	r.Waypoints = append([]Waypoint(nil), r.Waypoints...)
	r.Seasonality.BestMonths = append([]time.Month(nil), r.Seasonality.BestMonths...)
	r.Seasonality.Warnings = append([]string(nil), r.Seasonality.Warnings...)
	rewards := make(map[trip.CertificationLevel]Reward, len(r.Rewards))
	for k, v := range r.Rewards {
		rewards[k] = v
	}
	r.Rewards = rewards
	if r.Seasonal != nil {
		w := *r.Seasonal
		r.Seasonal = &w
	}
	return r
}

// predefinedRoutes is the built-in catalog data.
func predefinedRoutes() []PredefinedRoute {
	return []PredefinedRoute{
		{
			ID:                "route-66-classic",
			Name:              "Route 66 - Chicago to Santa Monica",
			Description:       "The classic cross-country motorcycle journey",
			Difficulty:        DifficultyIntermediate,
			Distance:          2448,
			EstimatedDuration: 168,
			ScenicRating:      4,
			Seasonality: Seasonality{
				BestMonths: []time.Month{time.April, time.May, time.June, time.September, time.October},
				Warnings:   []string{"Summer heat in Texas", "Winter weather in Illinois"},
			},
			Waypoints: []Waypoint{
				{ID: "wp-chicago", Name: "Chicago, IL", Lat: 41.8781, Lng: -87.6298, IsRequired: true},
				{ID: "wp-amarillo", Name: "Amarillo, TX", Lat: 35.2271, Lng: -101.8313, IsRequired: true},
				{ID: "wp-kingman", Name: "Kingman, AZ", Lat: 35.1983, Lng: -114.0572, IsRequired: true},
				{ID: "wp-santa-monica", Name: "Santa Monica, CA", Lat: 34.0522, Lng: -118.2437, IsRequired: true},
			},
			Criteria: Criteria{
				MinWaypointCompletion: 0.85,
				MaxDeviationRadius:    100,
				MinTimeSpent:          7200,
				RequiredPhotos:        2,
			},
			Rewards: map[trip.CertificationLevel]Reward{
				trip.LevelBronze: {MinCompletion: 0.85, Badge: "Route 66 Explorer"},
				trip.LevelSilver: {MinCompletion: 0.95, Badge: "Route 66 Navigator", RequiredPhotos: 3},
				trip.LevelGold:   {MinCompletion: 1.0, Badge: "Route 66 Master", RequiredPhotos: 5, MaxTime: 604800},
			},
		},
		{
			ID:                "beartooth-pass",
			Name:              "Beartooth Pass Highway",
			Description:       "Scenic mountain highway through Montana and Wyoming",
			Difficulty:        DifficultyAdvanced,
			Distance:          68,
			EstimatedDuration: 6,
			ScenicRating:      5,
			Seasonality: Seasonality{
				BestMonths: []time.Month{time.June, time.July, time.August, time.September},
				Warnings:   []string{"Closed in winter", "Weather can change rapidly"},
			},
			Waypoints: []Waypoint{
				{ID: "wp-red-lodge", Name: "Red Lodge, MT", Lat: 45.0167, Lng: -109.2667, IsRequired: true},
				{ID: "wp-beartooth-summit", Name: "Beartooth Pass Summit", Lat: 45.0033, Lng: -109.4667, IsRequired: true},
				{ID: "wp-cooke-city", Name: "Cooke City, MT", Lat: 44.9167, Lng: -110.1167, IsRequired: true},
			},
			Criteria: Criteria{
				MinWaypointCompletion: 0.90,
				MaxDeviationRadius:    50,
				MinTimeSpent:          3600,
				RequiredPhotos:        1,
			},
			Seasonal: &SeasonalWindow{
				Open:  MonthDay{Month: time.May, Day: 15},
				Close: MonthDay{Month: time.October, Day: 15},
			},
			Rewards: map[trip.CertificationLevel]Reward{
				trip.LevelBronze: {MinCompletion: 0.90, Badge: "Beartooth Explorer"},
				trip.LevelSilver: {MinCompletion: 0.95, Badge: "Mountain Navigator"},
				trip.LevelGold:   {MinCompletion: 1.0, Badge: "High Alpine Master", RequiredPhotos: 3},
			},
		},
		{
			ID:                "blue-ridge-parkway",
			Name:              "Blue Ridge Parkway",
			Description:       "America's most scenic motorcycle ride",
			Difficulty:        DifficultyBeginner,
			Distance:          469,
			EstimatedDuration: 12,
			ScenicRating:      5,
			Seasonality: Seasonality{
				BestMonths: []time.Month{time.April, time.May, time.June, time.September, time.October},
				Warnings:   []string{"Fog in valleys", "Leaf-season traffic in October"},
			},
			Waypoints: []Waypoint{
				{ID: "wp-va-nc-border", Name: "Virginia/North Carolina Border", Lat: 36.4767, Lng: -81.8092, IsRequired: true},
				{ID: "wp-mount-mitchell", Name: "Mount Mitchell", Lat: 36.1070, Lng: -82.1134, IsRequired: false},
				{ID: "wp-asheville", Name: "Asheville, NC", Lat: 35.5951, Lng: -82.5515, IsRequired: true},
				{ID: "wp-great-smoky", Name: "Great Smoky Mountains", Lat: 35.2709, Lng: -83.2085, IsRequired: true},
			},
			Criteria: Criteria{
				MinWaypointCompletion: 0.80,
				MaxDeviationRadius:    200,
				MinTimeSpent:          14400,
				RequiredPhotos:        2,
			},
			Rewards: map[trip.CertificationLevel]Reward{
				trip.LevelBronze: {MinCompletion: 0.80, Badge: "Blue Ridge Explorer"},
				trip.LevelSilver: {MinCompletion: 0.90, Badge: "Scenic Highway Navigator"},
				trip.LevelGold:   {MinCompletion: 1.0, Badge: "Appalachian Master", RequiredPhotos: 4},
			},
		},
	}
}
