// Package route provides the read-only catalog of predefined
// certification routes.
package route

import (
	"errors"
	"time"

	"github.com/ssoward/evyroad/internal/trip"
)

// ErrRouteNotFound is returned when a route id is not in the catalog.
var ErrRouteNotFound = errors.New("route not found")

// Difficulty grades a route for riders.
type Difficulty string

// Route difficulty grades.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Waypoint is one named checkpoint on a predefined route.
type Waypoint struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	IsRequired bool    `json:"isRequired"`
}

// Criteria are the completion requirements for certifying a route.
type Criteria struct {
	// MinWaypointCompletion is the fraction of waypoints that must be
	// visited, 0..1.
	MinWaypointCompletion float64 `json:"minWaypointCompletion"`

	// MaxDeviationRadius is how far a check-in may be from the
	// waypoint's reference coordinate, in meters.
	MaxDeviationRadius float64 `json:"maxDeviationRadius"`

	// MinTimeSpent is the minimum ride duration in seconds.
	MinTimeSpent float64 `json:"minTimeSpent"`

	// RequiredPhotos is the minimum photo count on submission.
	RequiredPhotos int `json:"requiredPhotos"`
}

// Reward describes one award tier for a route.
type Reward struct {
	MinCompletion  float64 `json:"minCompletion"`
	Badge          string  `json:"badge"`
	RequiredPhotos int     `json:"requiredPhotos,omitempty"`
	// MaxTime caps the total ride time in seconds; zero means no cap.
	MaxTime float64 `json:"maxTime,omitempty"`
}

// MonthDay is a recurring calendar date.
type MonthDay struct {
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// SeasonalWindow is the yearly open/close window for a route.
type SeasonalWindow struct {
	Open  MonthDay `json:"open"`
	Close MonthDay `json:"closed"`
}

// Contains reports whether t falls inside the window, inclusive on
// both edges, evaluated in t's year and location.
func (w SeasonalWindow) Contains(t time.Time) bool {
	opens := time.Date(t.Year(), w.Open.Month, w.Open.Day, 0, 0, 0, 0, t.Location())
	closes := time.Date(t.Year(), w.Close.Month, w.Close.Day, 23, 59, 59, 0, t.Location())
	return !t.Before(opens) && !t.After(closes)
}

// Seasonality is advisory riding-season information.
type Seasonality struct {
	BestMonths []time.Month `json:"bestMonths,omitempty"`
	Warnings   []string     `json:"warnings,omitempty"`
}

// PredefinedRoute is one catalog entry. Catalog entries are immutable;
// accessors hand out copies.
type PredefinedRoute struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`

	// Distance is the route length in miles, as published.
	Distance float64 `json:"distance"`

	// EstimatedDuration is the typical ride time in hours.
	EstimatedDuration float64 `json:"estimatedDuration"`

	ScenicRating int         `json:"scenicRating"`
	Seasonality  Seasonality `json:"seasonality"`

	Waypoints []Waypoint `json:"waypoints"`
	Criteria  Criteria   `json:"certificationCriteria"`

	Rewards map[trip.CertificationLevel]Reward `json:"rewards"`

	// Seasonal is the hard open/close window; nil means open year-round.
	Seasonal *SeasonalWindow `json:"seasonalAvailability,omitempty"`
}

// FindWaypoint returns the waypoint with the given id or name.
func (r *PredefinedRoute) FindWaypoint(idOrName string) (Waypoint, bool) {
	for _, wp := range r.Waypoints {
		if wp.ID == idOrName || wp.Name == idOrName {
			return wp, true
		}
	}
	return Waypoint{}, false
}

// RequiredWaypointCount returns how many waypoints are mandatory.
func (r *PredefinedRoute) RequiredWaypointCount() int {
	n := 0
	for _, wp := range r.Waypoints {
		if wp.IsRequired {
			n++
		}
	}
	return n
}

// AvailableAt reports whether a certification attempt may start at t.
func (r *PredefinedRoute) AvailableAt(t time.Time) bool {
	if r.Seasonal == nil {
		return true
	}
	return r.Seasonal.Contains(t)
}
