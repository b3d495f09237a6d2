package certification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssoward/evyroad/internal/route"
	"github.com/ssoward/evyroad/internal/trip"
)

type fakeCertifier struct {
	tripID string
	cert   *trip.Certification
}

func (f *fakeCertifier) SetCertification(_ context.Context, tripID string, cert *trip.Certification) error {
	f.tripID = tripID
	f.cert = cert
	return nil
}

func newTestCertService(now time.Time) (*Service, *fakeCertifier) {
	certifier := &fakeCertifier{}
	svc := NewService(NewMemoryRepository(), route.NewCatalog(), certifier, nil)
	svc.now = func() time.Time { return now }
	return svc, certifier
}

var summer = time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)

func TestStart(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, a.Status)
	assert.Contains(t, a.ID, "cert_")
	assert.Equal(t, 3, a.Progress.TotalWaypoints)
	assert.Equal(t, 3, a.Progress.TotalRequiredWaypoints)
	assert.Equal(t, 1, a.Progress.RequiredPhotos)
}

func TestStartUnknownRoute(t *testing.T) {
	svc, _ := newTestCertService(summer)

	_, err := svc.Start(context.Background(), "user-1", "no-such-route", "trip-1")
	assert.ErrorIs(t, err, route.ErrRouteNotFound)
}

func TestStartSeasonallyClosed(t *testing.T) {
	winter := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestCertService(winter)
	ctx := context.Background()

	_, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	assert.ErrorIs(t, err, ErrRouteNotAvailable)

	// Routes without a window start fine in winter.
	_, err = svc.Start(ctx, "user-1", "route-66-classic", "trip-1")
	assert.NoError(t, err)
}

func TestCheckIn(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	// Exactly at the summit reference coordinate.
	visit, err := svc.CheckIn(ctx, "user-1", a.ID, "wp-beartooth-summit", 45.0033, -109.4667)
	require.NoError(t, err)
	assert.Equal(t, "wp-beartooth-summit", visit.WaypointID)
	assert.True(t, visit.IsRequired)
	assert.Less(t, visit.DistanceMeters, 1.0)

	fetched, err := svc.Get(ctx, "user-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched.Progress.WaypointsCompleted)
	assert.Equal(t, 1, fetched.Progress.RequiredWaypointsCompleted)
}

func TestCheckInOutsideRadius(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	// About 5km north of the summit, far beyond the 50m tolerance.
	_, err = svc.CheckIn(ctx, "user-1", a.ID, "wp-beartooth-summit", 45.0483, -109.4667)
	var radiusErr *OutsideRadiusError
	require.ErrorAs(t, err, &radiusErr)
	assert.Greater(t, radiusErr.DistanceMeters, 4000.0)
	assert.Equal(t, 50.0, radiusErr.MaxMeters)

	// The failed check-in leaves progress untouched.
	fetched, err := svc.Get(ctx, "user-1", a.ID)
	require.NoError(t, err)
	assert.Zero(t, fetched.Progress.WaypointsCompleted)
	assert.Empty(t, fetched.WaypointsVisited)
}

func TestCheckInRepeatDoesNotDoubleCount(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, "user-1", a.ID, "wp-red-lodge", 45.0167, -109.2667)
	require.NoError(t, err)
	_, err = svc.CheckIn(ctx, "user-1", a.ID, "wp-red-lodge", 45.0167, -109.2667)
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, "user-1", a.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.WaypointsVisited, 2)
	assert.Equal(t, 1, fetched.Progress.WaypointsCompleted)
}

func TestCheckInByWaypointName(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	visit, err := svc.CheckIn(ctx, "user-1", a.ID, "Cooke City, MT", 44.9167, -110.1167)
	require.NoError(t, err)
	assert.Equal(t, "wp-cooke-city", visit.WaypointID)

	_, err = svc.CheckIn(ctx, "user-1", a.ID, "Nowhere", 44.9167, -110.1167)
	assert.ErrorIs(t, err, ErrWaypointNotFound)
}

func TestCheckInOwnership(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, "someone-else", a.ID, "wp-red-lodge", 45.0167, -109.2667)
	assert.ErrorIs(t, err, ErrNotAttemptOwner)
}

func TestSubmit(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	notes := "great ride"
	submitted, err := svc.Submit(ctx, "user-1", a.ID, []SubmissionPhoto{
		{URL: "https://example.com/summit.jpg", WaypointID: "wp-beartooth-summit", Location: trip.Location{Lat: 45.0033, Lng: -109.4667}},
	}, &notes)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)
	assert.Equal(t, 1, submitted.Progress.PhotosSubmitted)

	// No resubmission path.
	_, err = svc.Submit(ctx, "user-1", a.ID, []SubmissionPhoto{
		{URL: "https://example.com/again.jpg", WaypointID: "wp-red-lodge", Location: trip.Location{Lat: 45, Lng: -109}},
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmitRequiresPhotos(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "user-1", a.ID, nil, nil)
	assert.ErrorIs(t, err, ErrNoPhotos)

	_, err = svc.Submit(ctx, "user-1", a.ID, []SubmissionPhoto{{URL: "x"}}, nil)
	assert.ErrorIs(t, err, ErrNoPhotos)
}

func TestResolveCertify(t *testing.T) {
	svc, certifier := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "user-1", a.ID, []SubmissionPhoto{
		{URL: "https://example.com/p.jpg", WaypointID: "wp-beartooth-summit", Location: trip.Location{Lat: 45.0033, Lng: -109.4667}},
	}, nil)
	require.NoError(t, err)

	score := 95.0
	resolved, err := svc.Resolve(ctx, "reviewer-9", a.ID, ReviewDecision{
		Certified: true,
		Level:     trip.LevelGold,
		Score:     &score,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCertified, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	require.NotNil(t, certifier.cert)
	assert.Equal(t, "trip-1", certifier.tripID)
	assert.Equal(t, trip.CertificationCertified, certifier.cert.Status)
	assert.Equal(t, trip.LevelGold, *certifier.cert.Level)
	assert.Equal(t, "reviewer-9", *certifier.cert.ReviewedBy)
}

func TestResolveReject(t *testing.T) {
	svc, certifier := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "user-1", a.ID, []SubmissionPhoto{
		{URL: "https://example.com/p.jpg", WaypointID: "wp-red-lodge", Location: trip.Location{Lat: 45, Lng: -109}},
	}, nil)
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, "reviewer-9", a.ID, ReviewDecision{Certified: false})
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, resolved.Status)
	assert.Equal(t, trip.CertificationRejected, certifier.cert.Status)
	assert.Nil(t, certifier.cert.Level)
}

func TestResolveRejectsSelfReview(t *testing.T) {
	svc, certifier := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "user-1", a.ID, []SubmissionPhoto{
		{URL: "https://example.com/p.jpg", WaypointID: "wp-beartooth-summit", Location: trip.Location{Lat: 45.0033, Lng: -109.4667}},
	}, nil)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "user-1", a.ID, ReviewDecision{Certified: true})
	assert.ErrorIs(t, err, ErrSelfReview)

	// The attempt stays pending and the trip is never stamped.
	fetched, err := svc.Get(ctx, "user-1", a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPendingReview, fetched.Status)
	assert.Nil(t, certifier.cert)
}

func TestResolveRequiresSubmission(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	a, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, "reviewer-9", a.ID, ReviewDecision{Certified: true})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestListByUser(t *testing.T) {
	svc, _ := newTestCertService(summer)
	ctx := context.Background()

	_, err := svc.Start(ctx, "user-1", "beartooth-pass", "trip-1")
	require.NoError(t, err)
	_, err = svc.Start(ctx, "user-1", "route-66-classic", "trip-2")
	require.NoError(t, err)
	_, err = svc.Start(ctx, "user-2", "blue-ridge-parkway", "trip-3")
	require.NoError(t, err)

	attempts, err := svc.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, attempts, 2)
	assert.Equal(t, "beartooth-pass", attempts[0].RouteID)
	assert.Equal(t, "route-66-classic", attempts[1].RouteID)
}
