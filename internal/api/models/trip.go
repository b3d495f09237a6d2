package models

import (
	"fmt"
	"time"
)

// TripCreateRequest is the payload for creating a trip.
type TripCreateRequest struct {
	Title           string     `json:"title"`
	Description     *string    `json:"description,omitempty"`
	BikeID          *string    `json:"bikeId,omitempty"`
	StartLocation   Location   `json:"startLocation"`
	EndLocation     *Location  `json:"endLocation,omitempty"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	PlannedDuration *float64   `json:"plannedDuration,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	IsPublic        *bool      `json:"isPublic,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
}

// Validate checks the create request and returns field errors.
func (r *TripCreateRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required", Code: "required"})
	}
	if len(r.Title) > 200 {
		errs = append(errs, FieldError{Field: "title", Message: "title must be at most 200 characters", Code: "max_length"})
	}
	errs = append(errs, validateLocation("startLocation", r.StartLocation)...)
	if r.EndLocation != nil {
		errs = append(errs, validateLocation("endLocation", *r.EndLocation)...)
	}
	if r.PlannedDuration != nil && *r.PlannedDuration < 0 {
		errs = append(errs, FieldError{Field: "plannedDuration", Message: "plannedDuration must be non-negative", Code: "min"})
	}
	return errs
}

// TripUpdateRequest is the payload for patching a trip. All fields are
// optional; nil means leave unchanged.
type TripUpdateRequest struct {
	Title         *string   `json:"title,omitempty"`
	Description   *string   `json:"description,omitempty"`
	BikeID        *string   `json:"bikeId,omitempty"`
	Status        *string   `json:"status,omitempty"`
	EndLocation   *Location `json:"endLocation,omitempty"`
	Notes         *string   `json:"notes,omitempty"`
	IsPublic      *bool     `json:"isPublic,omitempty"`
	SharedWith    []string  `json:"sharedWith,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	OdometerStart *float64  `json:"odometerStart,omitempty"`
	OdometerEnd   *float64  `json:"odometerEnd,omitempty"`
	FuelUsed      *float64  `json:"fuelUsed,omitempty"`
	FuelCost      *float64  `json:"fuelCost,omitempty"`
}

// Validate checks the update request and returns field errors.
func (r *TripUpdateRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Title != nil && *r.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title cannot be empty", Code: "required"})
	}
	if r.EndLocation != nil {
		errs = append(errs, validateLocation("endLocation", *r.EndLocation)...)
	}
	for _, f := range []struct {
		name string
		val  *float64
	}{
		{"odometerStart", r.OdometerStart},
		{"odometerEnd", r.OdometerEnd},
		{"fuelUsed", r.FuelUsed},
		{"fuelCost", r.FuelCost},
	} {
		if f.val != nil && *f.val < 0 {
			errs = append(errs, FieldError{Field: f.name, Message: fmt.Sprintf("%s must be non-negative", f.name), Code: "min"})
		}
	}
	return errs
}

// WaypointRequest is the payload for appending one GPS sample to a trip.
type WaypointRequest struct {
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Altitude  *float64   `json:"altitude,omitempty"`
	Speed     *float64   `json:"speed,omitempty"`
	Accuracy  *float64   `json:"accuracy,omitempty"`
}

// Validate checks the waypoint request and returns field errors.
func (r *WaypointRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Lat < -90 || r.Lat > 90 {
		errs = append(errs, FieldError{Field: "lat", Message: "lat must be between -90 and 90", Code: "range"})
	}
	if r.Lng < -180 || r.Lng > 180 {
		errs = append(errs, FieldError{Field: "lng", Message: "lng must be between -180 and 180", Code: "range"})
	}
	if r.Speed != nil && *r.Speed < 0 {
		errs = append(errs, FieldError{Field: "speed", Message: "speed must be non-negative", Code: "min"})
	}
	return errs
}

// PhotoRequest is the payload for attaching a photo record to a trip.
type PhotoRequest struct {
	URL      string    `json:"url"`
	Caption  *string   `json:"caption,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Validate checks the photo request and returns field errors.
func (r *PhotoRequest) Validate() []FieldError {
	var errs []FieldError
	if r.URL == "" {
		errs = append(errs, FieldError{Field: "url", Message: "url is required", Code: "required"})
	}
	if r.Location != nil {
		errs = append(errs, validateLocation("location", *r.Location)...)
	}
	return errs
}

// WeatherRequest is the payload for recording a weather snapshot on a trip.
type WeatherRequest struct {
	Temperature   float64  `json:"temperature"`
	Condition     string   `json:"condition"`
	Humidity      float64  `json:"humidity"`
	WindSpeed     float64  `json:"windSpeed"`
	WindDirection float64  `json:"windDirection"`
	Visibility    *float64 `json:"visibility,omitempty"`
	Pressure      *float64 `json:"pressure,omitempty"`
	Icon          string   `json:"icon"`
}

// Validate checks the weather request and returns field errors.
func (r *WeatherRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Condition == "" {
		errs = append(errs, FieldError{Field: "condition", Message: "condition is required", Code: "required"})
	}
	if r.Humidity < 0 || r.Humidity > 100 {
		errs = append(errs, FieldError{Field: "humidity", Message: "humidity must be between 0 and 100", Code: "range"})
	}
	return errs
}

func validateLocation(field string, loc Location) []FieldError {
	var errs []FieldError
	if loc.Lat < -90 || loc.Lat > 90 {
		errs = append(errs, FieldError{Field: field + ".lat", Message: "lat must be between -90 and 90", Code: "range"})
	}
	if loc.Lng < -180 || loc.Lng > 180 {
		errs = append(errs, FieldError{Field: field + ".lng", Message: "lng must be between -180 and 180", Code: "range"})
	}
	return errs
}
