package trip

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func certifiedTrip(userID, routeID string, level *CertificationLevel, start time.Time, distance float64) *Trip {
	end := start.Add(2 * time.Hour)
	return &Trip{
		UserID:        userID,
		Title:         "certified on " + routeID,
		Status:        StatusCompleted,
		StartLocation: Location{Lat: 35, Lng: -90},
		StartTime:     start,
		EndTime:       &end,
		Metrics:       Metrics{TotalDistance: distance, TotalTime: 120},
		Certification: &Certification{
			RouteID: routeID,
			Status:  CertificationCertified,
			Level:   level,
		},
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := computeStats(nil)

	assert.Equal(t, 0, stats.TotalTrips)
	assert.Equal(t, 0, stats.CompletedTrips)
	assert.Zero(t, stats.AvgTripDistance)
	assert.Empty(t, stats.YearlyStats)
	assert.Empty(t, stats.Certifications)
	assert.Empty(t, stats.FavoriteRoutes)
}

func TestComputeStatsSummary(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	completedA := newTestTrip("u", "a", StatusCompleted, start)
	completedA.Metrics = Metrics{TotalDistance: 100, TotalTime: 90}
	completedA.Photos = []Photo{{URL: "x"}, {URL: "y"}}

	completedB := newTestTrip("u", "b", StatusCompleted, start.AddDate(0, 2, 0))
	completedB.Metrics = Metrics{TotalDistance: 40, TotalTime: 30}

	// A planned trip contributes to counts but not distance sums.
	planned := newTestTrip("u", "c", StatusPlanned, start)
	planned.Metrics = Metrics{TotalDistance: 999}
	planned.Photos = []Photo{{URL: "z"}}

	stats := computeStats([]*Trip{completedA, completedB, planned})

	assert.Equal(t, 3, stats.TotalTrips)
	assert.Equal(t, 2, stats.CompletedTrips)
	assert.InDelta(t, 140.0, stats.TotalDistance, 0.001)
	assert.InDelta(t, 120.0, stats.TotalTime, 0.001)
	assert.InDelta(t, 70.0, stats.AvgTripDistance, 0.001)
	assert.InDelta(t, 100.0, stats.LongestTrip, 0.001)
	assert.Equal(t, 3, stats.TotalPhotos)
}

func TestComputeStatsBuckets(t *testing.T) {
	mar2024 := newTestTrip("u", "a", StatusCompleted, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	mar2024.Metrics = Metrics{TotalDistance: 10, TotalTime: 20}
	may2025 := newTestTrip("u", "b", StatusCompleted, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	may2025.Metrics = Metrics{TotalDistance: 30, TotalTime: 40}
	alsoMay2025 := newTestTrip("u", "c", StatusCompleted, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))
	alsoMay2025.Metrics = Metrics{TotalDistance: 5, TotalTime: 5}

	stats := computeStats([]*Trip{mar2024, may2025, alsoMay2025})

	require.Len(t, stats.YearlyStats, 2)
	assert.Equal(t, "2025", stats.YearlyStats[0].Period)
	assert.Equal(t, 2, stats.YearlyStats[0].Trips)
	assert.InDelta(t, 35.0, stats.YearlyStats[0].Distance, 0.001)
	assert.Equal(t, "2024", stats.YearlyStats[1].Period)

	require.Len(t, stats.MonthlyStats, 2)
	assert.Equal(t, "2025-05", stats.MonthlyStats[0].Period)
	assert.Equal(t, "2024-03", stats.MonthlyStats[1].Period)
}

func TestComputeStatsCertifications(t *testing.T) {
	start := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	gold := LevelGold

	withLevel := certifiedTrip("u", "beartooth-pass", &gold, start, 100)
	reviewed := start.AddDate(0, 0, 3)
	withLevel.Certification.ReviewedAt = &reviewed

	noLevel := certifiedTrip("u", "route-66-classic", nil, start.AddDate(0, 1, 0), 50)

	stats := computeStats([]*Trip{withLevel, noLevel})

	assert.Equal(t, 2, stats.CertifiedTrips)
	require.Len(t, stats.Certifications, 2)

	assert.Equal(t, LevelGold, stats.Certifications[0].Level)
	assert.Equal(t, reviewed, stats.Certifications[0].EarnedAt)

	// Unset level defaults to bronze; earned time falls back to trip end.
	assert.Equal(t, LevelBronze, stats.Certifications[1].Level)
	assert.Equal(t, *noLevel.EndTime, stats.Certifications[1].EarnedAt)
}

func TestComputeStatsFavoriteRoutes(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var trips []*Trip

	// alpha: 1, beta: 3, gamma: 1, delta: 2, epsilon: 1, zeta: 1.
	for i, routeID := range []string{"alpha", "beta", "gamma", "beta", "delta", "epsilon", "beta", "delta", "zeta"} {
		trips = append(trips, certifiedTrip("u", routeID, nil, start.AddDate(0, 0, i), 10))
	}

	stats := computeStats(trips)

	require.Len(t, stats.FavoriteRoutes, 5)
	assert.Equal(t, FavoriteRoute{RouteID: "beta", Count: 3}, stats.FavoriteRoutes[0])
	assert.Equal(t, FavoriteRoute{RouteID: "delta", Count: 2}, stats.FavoriteRoutes[1])
	// Singles keep first-encounter order.
	assert.Equal(t, "alpha", stats.FavoriteRoutes[2].RouteID)
	assert.Equal(t, "gamma", stats.FavoriteRoutes[3].RouteID)
	assert.Equal(t, "epsilon", stats.FavoriteRoutes[4].RouteID)
}

func TestStatsServiceWithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisStatsCache(client, time.Minute, zerolog.Nop())

	repo := NewMemoryRepository()
	svc := NewStatsService(repo, cache)
	ctx := context.Background()

	trip := newTestTrip("user-1", "ride", StatusCompleted, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC))
	trip.Metrics = Metrics{TotalDistance: 80, TotalTime: 60}
	_, err := repo.Create(ctx, trip)
	require.NoError(t, err)

	stats, err := svc.UserStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTrips)
	assert.True(t, mr.Exists("stats:user-1"))

	// Second call is served from the cache: new trips are not visible
	// until invalidation.
	_, err = repo.Create(ctx, newTestTrip("user-1", "another", StatusCompleted, time.Now()))
	require.NoError(t, err)

	cached, err := svc.UserStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalTrips)

	svc.Invalidate(ctx, "user-1")
	assert.False(t, mr.Exists("stats:user-1"))

	fresh, err := svc.UserStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalTrips)
}

func TestStatsCacheDegradesWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewRedisStatsCache(client, time.Minute, zerolog.Nop())

	repo := NewMemoryRepository()
	svc := NewStatsService(repo, cache)
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestTrip("user-1", "ride", StatusCompleted, time.Now()))
	require.NoError(t, err)

	mr.Close()

	stats, err := svc.UserStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalTrips)
}
