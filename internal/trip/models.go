// Package trip provides trip logging, querying, and statistics services.
package trip

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrTripNotFound    = errors.New("trip not found")
	ErrTripNotActive   = errors.New("trip is not active")
	ErrVersionConflict = errors.New("trip was modified concurrently")
)

// Status is the lifecycle state of a trip.
type Status string

// Trip lifecycle states.
const (
	StatusPlanned   Status = "planned"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// transitions holds the allowed lifecycle moves. Completed and cancelled
// are terminal.
var transitions = map[Status][]Status{
	StatusPlanned: {StatusActive, StatusCancelled},
	StatusActive:  {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a trip may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Location is a geographic point with an optional human-readable address.
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address *string `json:"address,omitempty"`
}

// Waypoint is one GPS sample on a trip's path.
type Waypoint struct {
	ID        string    `json:"id"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
	Altitude  *float64  `json:"altitude,omitempty"`
	Speed     *float64  `json:"speed,omitempty"`
	Accuracy  *float64  `json:"accuracy,omitempty"`
}

// Photo is a media record attached to a trip. Only the URL is stored;
// binary upload handling lives outside this service.
type Photo struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Caption   *string   `json:"caption,omitempty"`
	Location  *Location `json:"location,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Elevation holds derived elevation figures in the waypoint altitude unit.
type Elevation struct {
	Gain float64 `json:"gain"`
	Loss float64 `json:"loss"`
	Max  float64 `json:"max"`
	Min  float64 `json:"min"`
}

// Metrics holds values derived from the waypoint sequence. They are
// recomputed on every waypoint append and never accepted from callers.
type Metrics struct {
	TotalDistance float64    `json:"totalDistance"` // km
	TotalTime     float64    `json:"totalTime"`     // minutes
	AvgSpeed      float64    `json:"avgSpeed"`      // km/h
	MaxSpeed      float64    `json:"maxSpeed"`      // km/h
	Elevation     *Elevation `json:"elevation,omitempty"`
}

// WeatherConditions is a point-in-time weather snapshot supplied by the
// caller; this service does not talk to weather providers.
type WeatherConditions struct {
	Temperature   float64  `json:"temperature"`
	Condition     string   `json:"condition"`
	Humidity      float64  `json:"humidity"`
	WindSpeed     float64  `json:"windSpeed"`
	WindDirection float64  `json:"windDirection"`
	Visibility    *float64 `json:"visibility,omitempty"`
	Pressure      *float64 `json:"pressure,omitempty"`
	Icon          string   `json:"icon"`
}

// CertificationStatus is the review state of a trip's certification record.
type CertificationStatus string

// Certification review states.
const (
	CertificationPending   CertificationStatus = "pending"
	CertificationCertified CertificationStatus = "certified"
	CertificationRejected  CertificationStatus = "rejected"
)

// CertificationLevel is the award tier for a certified route.
type CertificationLevel string

// Certification award tiers.
const (
	LevelBronze CertificationLevel = "bronze"
	LevelSilver CertificationLevel = "silver"
	LevelGold   CertificationLevel = "gold"
)

// Certification is the route-certification sub-record on a trip.
type Certification struct {
	RouteID              string              `json:"routeId"`
	Status               CertificationStatus `json:"status"`
	ReviewedAt           *time.Time          `json:"reviewedAt,omitempty"`
	ReviewedBy           *string             `json:"reviewedBy,omitempty"`
	Score                *float64            `json:"score,omitempty"`
	CompletionPercentage *float64            `json:"completionPercentage,omitempty"`
	Level                *CertificationLevel `json:"certificationLevel,omitempty"`
}

// Trip is one logged or planned ride.
type Trip struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	BikeID      *string `json:"bikeId,omitempty"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      Status  `json:"status"`

	StartLocation Location   `json:"startLocation"`
	EndLocation   *Location  `json:"endLocation,omitempty"`
	Waypoints     []Waypoint `json:"waypoints"`
	PlannedRoute  []Waypoint `json:"plannedRoute,omitempty"`

	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	PlannedDuration *float64   `json:"plannedDuration,omitempty"` // minutes

	Metrics Metrics `json:"metrics"`

	Photos []Photo `json:"photos"`
	Notes  *string `json:"notes,omitempty"`

	Weather        *WeatherConditions  `json:"weather,omitempty"`
	WeatherHistory []WeatherConditions `json:"weatherHistory,omitempty"`

	Certification *Certification `json:"certification,omitempty"`

	IsPublic   bool     `json:"isPublic"`
	SharedWith []string `json:"sharedWith,omitempty"`
	Tags       []string `json:"tags"`

	OdometerStart *float64 `json:"odometerStart,omitempty"`
	OdometerEnd   *float64 `json:"odometerEnd,omitempty"`
	FuelUsed      *float64 `json:"fuelUsed,omitempty"`
	FuelCost      *float64 `json:"fuelCost,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version is the optimistic-concurrency counter used by the
	// Postgres repository. The memory repository ignores it.
	Version int64 `json:"-"`
}

// clone returns a deep copy so repository callers never alias stored state.
func (t *Trip) clone() *Trip {
	cpy := *t
	cpy.Waypoints = append([]Waypoint(nil), t.Waypoints...)
	cpy.PlannedRoute = append([]Waypoint(nil), t.PlannedRoute...)
	cpy.Photos = append([]Photo(nil), t.Photos...)
	cpy.WeatherHistory = append([]WeatherConditions(nil), t.WeatherHistory...)
	cpy.SharedWith = append([]string(nil), t.SharedWith...)
	cpy.Tags = append([]string(nil), t.Tags...)
	if t.Weather != nil {
		w := *t.Weather
		cpy.Weather = &w
	}
	if t.Certification != nil {
		c := *t.Certification
		cpy.Certification = &c
	}
	if t.EndLocation != nil {
		loc := *t.EndLocation
		cpy.EndLocation = &loc
	}
	if t.Metrics.Elevation != nil {
		e := *t.Metrics.Elevation
		cpy.Metrics.Elevation = &e
	}
	return &cpy
}
