package trip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssoward/evyroad/internal/api/models"
)

type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) Broadcast(_, event string, _ any) {
	f.events = append(f.events, event)
}

type fakeInvalidator struct {
	users []string
}

func (f *fakeInvalidator) Invalidate(_ context.Context, userID string) {
	f.users = append(f.users, userID)
}

func newTestService() (*Service, *fakeBroadcaster, *fakeInvalidator) {
	b := &fakeBroadcaster{}
	inv := &fakeInvalidator{}
	return NewService(NewMemoryRepository(), b, inv), b, inv
}

func createRequest(title string) *models.TripCreateRequest {
	return &models.TripCreateRequest{
		Title:         title,
		StartLocation: models.Location{Lat: 35.0, Lng: -90.0},
	}
}

func TestServiceCreate(t *testing.T) {
	svc, _, inv := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", createRequest("Weekend ride"))
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, created.Status)
	assert.Equal(t, "user-1", created.UserID)
	assert.False(t, created.StartTime.IsZero())
	assert.Equal(t, []string{"user-1"}, inv.users)
}

func TestServiceCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), "user-1", &models.TripCreateRequest{
		StartLocation: models.Location{Lat: 200, Lng: 0},
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	fields := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		fields = append(fields, fe.Field)
	}
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "startLocation.lat")
}

func TestServiceGetVisibility(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", createRequest("Private ride"))
	require.NoError(t, err)

	// Owner always sees it.
	_, err = svc.Get(ctx, "owner", created.ID)
	require.NoError(t, err)

	// Strangers get not found, not forbidden.
	_, err = svc.Get(ctx, "stranger", created.ID)
	assert.ErrorIs(t, err, ErrTripNotFound)

	// Shared users see it.
	shared := []string{"friend"}
	_, err = svc.Update(ctx, "owner", created.ID, &models.TripUpdateRequest{SharedWith: shared})
	require.NoError(t, err)
	_, err = svc.Get(ctx, "friend", created.ID)
	require.NoError(t, err)

	// Public trips are visible to anyone.
	public := true
	_, err = svc.Update(ctx, "owner", created.ID, &models.TripUpdateRequest{IsPublic: &public})
	require.NoError(t, err)
	_, err = svc.Get(ctx, "stranger", created.ID)
	require.NoError(t, err)
}

func TestServiceUpdateOwnership(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner", createRequest("Mine"))
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.Update(ctx, "stranger", created.ID, &models.TripUpdateRequest{Title: &title})
	assert.ErrorIs(t, err, ErrNotTripOwner)

	err = svc.Delete(ctx, "stranger", created.ID)
	assert.ErrorIs(t, err, ErrNotTripOwner)
}

func TestServiceStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []string
		wantErr error
	}{
		{name: "planned to active to completed", path: []string{"active", "completed"}},
		{name: "planned to cancelled", path: []string{"cancelled"}},
		{name: "planned straight to completed", path: []string{"completed"}, wantErr: ErrInvalidTransition},
		{name: "completed is terminal", path: []string{"active", "completed", "active"}, wantErr: ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			ctx := context.Background()

			created, err := svc.Create(ctx, "user-1", createRequest("ride"))
			require.NoError(t, err)

			var lastErr error
			for _, status := range tt.path {
				s := status
				_, lastErr = svc.Update(ctx, "user-1", created.ID, &models.TripUpdateRequest{Status: &s})
				if lastErr != nil {
					break
				}
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, lastErr, tt.wantErr)
			} else {
				assert.NoError(t, lastErr)
			}
		})
	}
}

func TestServiceCompletionStampsEndTime(t *testing.T) {
	svc, b, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", createRequest("ride"))
	require.NoError(t, err)

	active := "active"
	_, err = svc.Update(ctx, "user-1", created.ID, &models.TripUpdateRequest{Status: &active})
	require.NoError(t, err)

	completed := "completed"
	updated, err := svc.Update(ctx, "user-1", created.ID, &models.TripUpdateRequest{Status: &completed})
	require.NoError(t, err)
	require.NotNil(t, updated.EndTime)
	assert.WithinDuration(t, time.Now(), *updated.EndTime, 5*time.Second)
	assert.Contains(t, b.events, "trip.updated")
}

func TestServiceAddWaypoint(t *testing.T) {
	svc, b, inv := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", createRequest("ride"))
	require.NoError(t, err)

	// Waypoints are rejected while the trip is only planned.
	_, err = svc.AddWaypoint(ctx, "user-1", created.ID, &models.WaypointRequest{Lat: 35, Lng: -90})
	assert.ErrorIs(t, err, ErrTripNotActive)

	active := "active"
	_, err = svc.Update(ctx, "user-1", created.ID, &models.TripUpdateRequest{Status: &active})
	require.NoError(t, err)

	wp, err := svc.AddWaypoint(ctx, "user-1", created.ID, &models.WaypointRequest{Lat: 35, Lng: -90})
	require.NoError(t, err)
	assert.NotEmpty(t, wp.ID)
	assert.False(t, wp.Timestamp.IsZero())
	assert.Contains(t, b.events, "trip.waypoint")
	assert.Contains(t, inv.users, "user-1")
}

func TestServiceAddWaypointValidation(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.AddWaypoint(context.Background(), "user-1", "any", &models.WaypointRequest{Lat: 91, Lng: 0})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestServiceAddPhoto(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", createRequest("ride"))
	require.NoError(t, err)

	photo, err := svc.AddPhoto(ctx, "user-1", created.ID, &models.PhotoRequest{URL: "https://example.com/a.jpg"})
	require.NoError(t, err)
	assert.NotEmpty(t, photo.ID)

	fetched, err := svc.Get(ctx, "user-1", created.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Photos, 1)
}

func TestServiceRecordWeather(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", createRequest("ride"))
	require.NoError(t, err)

	updated, err := svc.RecordWeather(ctx, "user-1", created.ID, &models.WeatherRequest{
		Temperature: 21,
		Condition:   "clear",
		Humidity:    40,
		Icon:        "01d",
	})
	require.NoError(t, err)
	require.NotNil(t, updated.Weather)
	assert.Equal(t, "clear", updated.Weather.Condition)
}

func TestServiceSetCertification(t *testing.T) {
	svc, b, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-1", createRequest("ride"))
	require.NoError(t, err)

	level := LevelGold
	err = svc.SetCertification(ctx, created.ID, &Certification{
		RouteID: "route-66-classic",
		Status:  CertificationCertified,
		Level:   &level,
	})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, "user-1", created.ID)
	require.NoError(t, err)
	require.NotNil(t, fetched.Certification)
	assert.Equal(t, CertificationCertified, fetched.Certification.Status)
	assert.Contains(t, b.events, "trip.certification")
}
