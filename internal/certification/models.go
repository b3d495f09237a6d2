// Package certification implements the route certification workflow:
// starting attempts, waypoint check-ins, submission for review, and
// review resolution.
package certification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"

	"github.com/ssoward/evyroad/internal/trip"
)

// Workflow errors.
var (
	ErrAttemptNotFound      = errors.New("certification attempt not found")
	ErrNotAttemptOwner      = errors.New("not authorized to access this certification attempt")
	ErrRouteNotAvailable    = errors.New("route is not currently available due to seasonal restrictions")
	ErrWaypointNotFound     = errors.New("waypoint not found on route")
	ErrAttemptNotInProgress = errors.New("certification attempt is not in progress")
	ErrInvalidTransition    = errors.New("invalid certification state transition")
	ErrNoPhotos             = errors.New("at least one photo is required")
	ErrSelfReview           = errors.New("riders cannot review their own certification attempt")
)

// OutsideRadiusError reports a check-in that landed too far from the
// waypoint's reference coordinate.
type OutsideRadiusError struct {
	DistanceMeters float64
	MaxMeters      float64
}

func (e *OutsideRadiusError) Error() string {
	return fmt.Sprintf("%.2fkm from the required waypoint; must be within %.0fm",
		e.DistanceMeters/1000, e.MaxMeters)
}

// Status is the review state of a certification attempt.
type Status string

// Attempt states. Transitions are one-directional; there is no
// resubmission path.
const (
	StatusNotStarted    Status = "not_started"
	StatusInProgress    Status = "in_progress"
	StatusPendingReview Status = "pending_review"
	StatusCertified     Status = "certified"
	StatusRejected      Status = "rejected"
)

// State machine events.
const (
	eventBegin   = "begin"
	eventSubmit  = "submit"
	eventCertify = "certify"
	eventReject  = "reject"
)

// newMachine builds the attempt state machine positioned at current.
func newMachine(current Status) *fsm.FSM {
	return fsm.NewFSM(
		string(current),
		fsm.Events{
			{Name: eventBegin, Src: []string{string(StatusNotStarted)}, Dst: string(StatusInProgress)},
			{Name: eventSubmit, Src: []string{string(StatusInProgress)}, Dst: string(StatusPendingReview)},
			{Name: eventCertify, Src: []string{string(StatusPendingReview)}, Dst: string(StatusCertified)},
			{Name: eventReject, Src: []string{string(StatusPendingReview)}, Dst: string(StatusRejected)},
		},
		fsm.Callbacks{},
	)
}

// WaypointVisit records one successful check-in.
type WaypointVisit struct {
	WaypointID     string        `json:"waypointId"`
	Timestamp      time.Time     `json:"timestamp"`
	Location       trip.Location `json:"location"`
	DistanceMeters float64       `json:"distance"`
	IsRequired     bool          `json:"isRequired"`
}

// SubmissionPhoto is one photo attached to a submission. All fields
// are required.
type SubmissionPhoto struct {
	URL        string        `json:"url"`
	WaypointID string        `json:"waypointId"`
	Location   trip.Location `json:"location"`
}

// Progress tracks completion counters on an attempt.
type Progress struct {
	WaypointsCompleted         int `json:"waypointsCompleted"`
	TotalWaypoints             int `json:"totalWaypoints"`
	RequiredWaypointsCompleted int `json:"requiredWaypointsCompleted"`
	TotalRequiredWaypoints     int `json:"totalRequiredWaypoints"`
	PhotosSubmitted            int `json:"photosSubmitted"`
	RequiredPhotos             int `json:"requiredPhotos"`
}

// Attempt is one certification attempt by a user on a route.
type Attempt struct {
	ID      string `json:"id"`
	UserID  string `json:"userId"`
	TripID  string `json:"tripId"`
	RouteID string `json:"routeId"`
	Status  Status `json:"status"`

	StartTime   time.Time  `json:"startTime"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`

	WaypointsVisited []WaypointVisit   `json:"waypointsVisited"`
	Photos           []SubmissionPhoto `json:"photos"`
	Notes            *string           `json:"notes,omitempty"`

	Progress Progress `json:"progress"`
}

// transition advances the attempt through the state machine, rejecting
// moves the machine does not allow.
func (a *Attempt) transition(ctx context.Context, event string) error {
	m := newMachine(a.Status)
	if err := m.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, a.Status)
	}
	a.Status = Status(m.Current())
	return nil
}

// Visited reports whether the waypoint already has a recorded visit.
func (a *Attempt) Visited(waypointID string) bool {
	for _, v := range a.WaypointsVisited {
		if v.WaypointID == waypointID {
			return true
		}
	}
	return false
}

// CompletionFraction is the share of route waypoints visited, 0..1.
func (a *Attempt) CompletionFraction() float64 {
	if a.Progress.TotalWaypoints == 0 {
		return 0
	}
	return float64(a.Progress.WaypointsCompleted) / float64(a.Progress.TotalWaypoints)
}

// clone returns a deep copy so repository callers never alias stored
// state.
func (a *Attempt) clone() *Attempt {
	cpy := *a
	cpy.WaypointsVisited = append([]WaypointVisit(nil), a.WaypointsVisited...)
	cpy.Photos = append([]SubmissionPhoto(nil), a.Photos...)
	if a.SubmittedAt != nil {
		t := *a.SubmittedAt
		cpy.SubmittedAt = &t
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		cpy.ResolvedAt = &t
	}
	return &cpy
}
