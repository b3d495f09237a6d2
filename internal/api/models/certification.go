package models

// StartCertificationRequest begins a certification attempt on a route.
type StartCertificationRequest struct {
	RouteID string `json:"routeId"`
	TripID  string `json:"tripId"`
}

// Validate checks the start request and returns field errors.
func (r *StartCertificationRequest) Validate() []FieldError {
	var errs []FieldError
	if r.RouteID == "" {
		errs = append(errs, FieldError{Field: "routeId", Message: "routeId is required", Code: "required"})
	}
	if r.TripID == "" {
		errs = append(errs, FieldError{Field: "tripId", Message: "tripId is required", Code: "required"})
	}
	return errs
}

// WaypointCheckInRequest records a rider's position against a route waypoint.
type WaypointCheckInRequest struct {
	WaypointID string  `json:"waypointId"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
}

// Validate checks the check-in request and returns field errors.
func (r *WaypointCheckInRequest) Validate() []FieldError {
	var errs []FieldError
	if r.WaypointID == "" {
		errs = append(errs, FieldError{Field: "waypointId", Message: "waypointId is required", Code: "required"})
	}
	if r.Lat < -90 || r.Lat > 90 {
		errs = append(errs, FieldError{Field: "lat", Message: "lat must be between -90 and 90", Code: "range"})
	}
	if r.Lng < -180 || r.Lng > 180 {
		errs = append(errs, FieldError{Field: "lng", Message: "lng must be between -180 and 180", Code: "range"})
	}
	return errs
}

// SubmissionPhotoRequest is one photo attached to a certification
// submission. Every photo must name the waypoint it documents and
// where it was taken.
type SubmissionPhotoRequest struct {
	URL        string   `json:"url"`
	WaypointID string   `json:"waypointId"`
	Location   Location `json:"location"`
}

// SubmitCertificationRequest submits a completed attempt for review.
type SubmitCertificationRequest struct {
	Photos []SubmissionPhotoRequest `json:"photos"`
	Notes  *string                  `json:"notes,omitempty"`
}

// Validate checks the submit request and returns field errors.
func (r *SubmitCertificationRequest) Validate() []FieldError {
	var errs []FieldError
	if len(r.Photos) == 0 {
		errs = append(errs, FieldError{Field: "photos", Message: "at least one photo is required", Code: "min"})
	}
	for _, photo := range r.Photos {
		if photo.URL == "" {
			errs = append(errs, FieldError{Field: "photos", Message: "photo url is required", Code: "required"})
			break
		}
		if photo.WaypointID == "" {
			errs = append(errs, FieldError{Field: "photos", Message: "photo waypointId is required", Code: "required"})
			break
		}
	}
	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, FieldError{Field: "notes", Message: "notes must be at most 1000 characters", Code: "max_length"})
	}
	return errs
}

// ReviewCertificationRequest resolves a submitted attempt.
type ReviewCertificationRequest struct {
	Certified            bool     `json:"certified"`
	Level                *string  `json:"certificationLevel,omitempty"`
	Score                *float64 `json:"score,omitempty"`
	CompletionPercentage *float64 `json:"completionPercentage,omitempty"`
}

// Validate checks the review request and returns field errors.
func (r *ReviewCertificationRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Level != nil {
		switch *r.Level {
		case "bronze", "silver", "gold":
		default:
			errs = append(errs, FieldError{Field: "certificationLevel", Message: "certificationLevel must be bronze, silver, or gold", Code: "enum"})
		}
	}
	if r.Score != nil && (*r.Score < 0 || *r.Score > 100) {
		errs = append(errs, FieldError{Field: "score", Message: "score must be between 0 and 100", Code: "range"})
	}
	if r.CompletionPercentage != nil && (*r.CompletionPercentage < 0 || *r.CompletionPercentage > 1) {
		errs = append(errs, FieldError{Field: "completionPercentage", Message: "completionPercentage must be between 0 and 1", Code: "range"})
	}
	return errs
}
