package trip

import (
	"context"
	"sort"
	"strconv"
	"time"
)

// statsPageSize is the page size used when scanning a user's trips.
const statsPageSize = 500

// PeriodStats is one yearly or monthly aggregation bucket. Period is
// "2025" for yearly buckets and "2025-06" for monthly ones.
type PeriodStats struct {
	Period   string  `json:"period"`
	Trips    int     `json:"trips"`
	Distance float64 `json:"distance"`
	Time     float64 `json:"time"`
}

// CertificationSummary is one earned certification in the stats result.
type CertificationSummary struct {
	RouteID  string             `json:"routeId"`
	Level    CertificationLevel `json:"level"`
	EarnedAt time.Time          `json:"earnedAt"`
}

// FavoriteRoute pairs a route id with its certified-trip count.
type FavoriteRoute struct {
	RouteID string `json:"routeId"`
	Count   int    `json:"count"`
}

// UserStats is the aggregated statistics document for one user.
type UserStats struct {
	TotalTrips      int     `json:"totalTrips"`
	CompletedTrips  int     `json:"completedTrips"`
	TotalDistance   float64 `json:"totalDistance"`
	TotalTime       float64 `json:"totalTime"`
	AvgTripDistance float64 `json:"avgTripDistance"`
	CertifiedTrips  int     `json:"certifiedTrips"`
	LongestTrip     float64 `json:"longestTrip"`
	TotalPhotos     int     `json:"totalPhotos"`

	YearlyStats  []PeriodStats `json:"yearlyStats"`
	MonthlyStats []PeriodStats `json:"monthlyStats"`

	Certifications []CertificationSummary `json:"certifications"`
	FavoriteRoutes []FavoriteRoute        `json:"favoriteRoutes"`
}

// StatsCache caches computed stats documents. Implementations must
// degrade silently: a miss and a backend failure look the same.
type StatsCache interface {
	Get(ctx context.Context, userID string) (*UserStats, bool)
	Set(ctx context.Context, userID string, stats *UserStats)
	Invalidate(ctx context.Context, userID string)
}

// StatsService computes per-user trip statistics, optionally fronted
// by a cache.
type StatsService struct {
	repo  Repository
	cache StatsCache
}

// NewStatsService creates a stats service. cache may be nil.
func NewStatsService(repo Repository, cache StatsCache) *StatsService {
	return &StatsService{repo: repo, cache: cache}
}

// Invalidate drops the cached document for a user. It satisfies the
// StatsInvalidator hook on the trip service.
func (s *StatsService) Invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

// UserStats returns the statistics document for a user, computing it
// from the repository on a cache miss.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*UserStats, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, userID); ok {
			return cached, nil
		}
	}

	trips, err := s.allTrips(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := computeStats(trips)

	if s.cache != nil {
		s.cache.Set(ctx, userID, stats)
	}
	return stats, nil
}

// allTrips pages through the full listing. Stats aggregate over every
// trip, so the scan ignores the default listing limit.
func (s *StatsService) allTrips(ctx context.Context, userID string) ([]*Trip, error) {
	var all []*Trip
	for offset := 0; ; offset += statsPageSize {
		page, err := s.repo.List(ctx, userID, ListOptions{
			Limit:     statsPageSize,
			Offset:    offset,
			SortBy:    SortByCreatedAt,
			SortOrder: SortAsc,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < statsPageSize {
			return all, nil
		}
	}
}

// computeStats aggregates a user's trips into the stats document.
// Distance and time sums cover completed trips only; counts of trips,
// photos, and certifications cover every status.
func computeStats(trips []*Trip) *UserStats {
	stats := &UserStats{
		TotalTrips:     len(trips),
		YearlyStats:    []PeriodStats{},
		MonthlyStats:   []PeriodStats{},
		Certifications: []CertificationSummary{},
		FavoriteRoutes: []FavoriteRoute{},
	}

	yearly := map[string]*PeriodStats{}
	monthly := map[string]*PeriodStats{}
	routeCounts := map[string]int{}
	var routeOrder []string

	for _, t := range trips {
		stats.TotalPhotos += len(t.Photos)

		if t.Certification != nil && t.Certification.Status == CertificationCertified {
			stats.CertifiedTrips++
			stats.Certifications = append(stats.Certifications, certificationSummary(t))

			routeID := t.Certification.RouteID
			if _, seen := routeCounts[routeID]; !seen {
				routeOrder = append(routeOrder, routeID)
			}
			routeCounts[routeID]++
		}

		if t.Status != StatusCompleted {
			continue
		}
		stats.CompletedTrips++
		stats.TotalDistance += t.Metrics.TotalDistance
		stats.TotalTime += t.Metrics.TotalTime
		if t.Metrics.TotalDistance > stats.LongestTrip {
			stats.LongestTrip = t.Metrics.TotalDistance
		}

		yearKey := strconv.Itoa(t.StartTime.Year())
		monthKey := t.StartTime.Format("2006-01")
		bucketAdd(yearly, yearKey, t)
		bucketAdd(monthly, monthKey, t)
	}

	if stats.CompletedTrips > 0 {
		stats.AvgTripDistance = stats.TotalDistance / float64(stats.CompletedTrips)
	}

	stats.YearlyStats = sortedBuckets(yearly)
	stats.MonthlyStats = sortedBuckets(monthly)
	stats.FavoriteRoutes = favoriteRoutes(routeCounts, routeOrder)

	return stats
}

func bucketAdd(buckets map[string]*PeriodStats, key string, t *Trip) {
	b, ok := buckets[key]
	if !ok {
		b = &PeriodStats{Period: key}
		buckets[key] = b
	}
	b.Trips++
	b.Distance += t.Metrics.TotalDistance
	b.Time += t.Metrics.TotalTime
}

// sortedBuckets flattens the bucket map sorted descending by period.
// Both "2006" and "2006-01" keys sort correctly as strings.
func sortedBuckets(buckets map[string]*PeriodStats) []PeriodStats {
	out := make([]PeriodStats, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period > out[j].Period })
	return out
}

// favoriteRoutes returns the up-to-5 most certified routes, counted
// descending with ties kept in first-encountered order.
func favoriteRoutes(counts map[string]int, order []string) []FavoriteRoute {
	routes := make([]FavoriteRoute, 0, len(order))
	for _, id := range order {
		routes = append(routes, FavoriteRoute{RouteID: id, Count: counts[id]})
	}
	sort.SliceStable(routes, func(i, j int) bool { return routes[i].Count > routes[j].Count })
	if len(routes) > 5 {
		routes = routes[:5]
	}
	return routes
}

// certificationSummary builds the stats entry for one certified trip.
// Level defaults to bronze when the review never recorded one; the
// earned time prefers the review timestamp, then the trip end, then
// creation.
func certificationSummary(t *Trip) CertificationSummary {
	cert := t.Certification
	level := LevelBronze
	if cert.Level != nil {
		level = *cert.Level
	}
	earnedAt := t.CreatedAt
	if cert.ReviewedAt != nil {
		earnedAt = *cert.ReviewedAt
	} else if t.EndTime != nil {
		earnedAt = *t.EndTime
	}
	return CertificationSummary{RouteID: cert.RouteID, Level: level, EarnedAt: earnedAt}
}
