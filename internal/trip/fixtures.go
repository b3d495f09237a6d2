package trip

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DemoUserID owns the demo fixtures loaded by SeedDemo.
const DemoUserID = "demo-user-123"

// SeedDemo loads three sample trips for the demo user: a completed and
// certified mountain ride, an active cross-country leg, and a planned
// weekend trip. Intended for local development behind a config flag.
func SeedDemo(ctx context.Context, repo Repository) error {
	now := time.Now()

	for i, t := range demoTrips(now) {
		created, err := repo.Create(ctx, t)
		if err != nil {
			return fmt.Errorf("seed demo trip %d: %w", i+1, err)
		}
		if t.Certification != nil {
			if err := repo.SetCertification(ctx, created.ID, t.Certification); err != nil {
				return fmt.Errorf("seed demo trip %d certification: %w", i+1, err)
			}
		}
	}
	return nil
}

func demoTrips(now time.Time) []*Trip {
	rideStart := time.Date(2024, 10, 15, 8, 0, 0, 0, time.UTC)
	rideEnd := time.Date(2024, 10, 15, 15, 30, 0, 0, time.UTC)
	reviewed := time.Date(2024, 10, 16, 10, 0, 0, 0, time.UTC)

	gold := LevelGold
	legStart := now.Add(-2 * time.Hour)
	planned := now.Add(48 * time.Hour)

	return []*Trip{
		{
			UserID:      DemoUserID,
			BikeID:      strPtr("bike-1"),
			Title:       "Weekend Blue Ridge Ride",
			Description: strPtr("Beautiful autumn ride through the Blue Ridge Mountains with perfect weather and great company."),
			Status:      StatusCompleted,
			StartLocation: Location{
				Lat: 35.5951, Lng: -82.5515,
				Address: strPtr("Asheville, NC, USA"),
			},
			EndLocation: &Location{
				Lat: 36.1070, Lng: -82.1134,
				Address: strPtr("Mount Mitchell State Park, NC, USA"),
			},
			Waypoints: []Waypoint{
				{ID: uuid.NewString(), Lat: 35.5951, Lng: -82.5515, Altitude: floatPtr(2134), Speed: floatPtr(0), Accuracy: floatPtr(5), Timestamp: rideStart},
				{ID: uuid.NewString(), Lat: 35.7348, Lng: -82.2635, Altitude: floatPtr(3500), Speed: floatPtr(45), Accuracy: floatPtr(8), Timestamp: rideStart.Add(90 * time.Minute)},
				{ID: uuid.NewString(), Lat: 36.1070, Lng: -82.1134, Altitude: floatPtr(6684), Speed: floatPtr(0), Accuracy: floatPtr(5), Timestamp: rideStart.Add(225 * time.Minute)},
			},
			StartTime:       rideStart,
			EndTime:         &rideEnd,
			PlannedDuration: floatPtr(480),
			Metrics: Metrics{
				TotalDistance: 127.5,
				TotalTime:     450,
				AvgSpeed:      28.3,
				MaxSpeed:      65.2,
				Elevation:     &Elevation{Gain: 4550, Loss: 4550, Max: 6684, Min: 2134},
			},
			Photos: []Photo{
				{
					ID:        uuid.NewString(),
					URL:       "/api/photos/sample1.jpg",
					Caption:   strPtr("Morning view from Asheville overlook"),
					Location:  &Location{Lat: 35.5951, Lng: -82.5515, Address: strPtr("Blue Ridge Parkway Overlook")},
					Timestamp: rideStart.Add(30 * time.Minute),
				},
				{
					ID:        uuid.NewString(),
					URL:       "/api/photos/sample2.jpg",
					Caption:   strPtr("Summit of Mount Mitchell - highest peak east of the Mississippi!"),
					Location:  &Location{Lat: 36.1070, Lng: -82.1134, Address: strPtr("Mount Mitchell Summit")},
					Timestamp: rideStart.Add(225 * time.Minute),
				},
			},
			Notes: strPtr("Perfect weather, amazing fall colors. The climb to Mount Mitchell was challenging but totally worth it."),
			Weather: &WeatherConditions{
				Temperature: 68, Condition: "Partly Cloudy", Humidity: 45,
				WindSpeed: 8, WindDirection: 225,
				Visibility: floatPtr(10), Pressure: floatPtr(29.85),
				Icon: "partly-cloudy-day",
			},
			Certification: &Certification{
				RouteID:              "blue-ridge-parkway",
				Status:               CertificationCertified,
				ReviewedAt:           &reviewed,
				ReviewedBy:           strPtr("system"),
				Score:                floatPtr(95),
				CompletionPercentage: floatPtr(95),
				Level:                &gold,
			},
			IsPublic:      true,
			Tags:          []string{"scenic", "mountains", "autumn", "certified"},
			OdometerStart: floatPtr(12450),
			OdometerEnd:   floatPtr(12577),
			FuelUsed:      floatPtr(3.2),
			FuelCost:      floatPtr(12.48),
		},
		{
			UserID:      DemoUserID,
			BikeID:      strPtr("bike-1"),
			Title:       "Cross-Country Adventure Day 3",
			Description: strPtr("Day 3 of our cross-country ride - heading through Kansas today."),
			Status:      StatusActive,
			StartLocation: Location{
				Lat: 39.0458, Lng: -95.6890,
				Address: strPtr("Lawrence, KS, USA"),
			},
			EndLocation: &Location{
				Lat: 39.8283, Lng: -98.5795,
				Address: strPtr("Smith Center, KS, USA"),
			},
			Waypoints: []Waypoint{
				{ID: uuid.NewString(), Lat: 39.0458, Lng: -95.6890, Altitude: floatPtr(268), Speed: floatPtr(0), Accuracy: floatPtr(5), Timestamp: legStart},
				{ID: uuid.NewString(), Lat: 39.1836, Lng: -96.5717, Altitude: floatPtr(329), Speed: floatPtr(55), Accuracy: floatPtr(8), Timestamp: now.Add(-time.Hour)},
			},
			StartTime:       legStart,
			PlannedDuration: floatPtr(360),
			Metrics: Metrics{
				TotalDistance: 78.3,
				TotalTime:     120,
				AvgSpeed:      39.1,
				MaxSpeed:      72.5,
				Elevation:     &Elevation{Gain: 150, Loss: 89, Max: 329, Min: 268},
			},
			Photos: []Photo{
				{
					ID:        uuid.NewString(),
					URL:       "/api/photos/sample3.jpg",
					Caption:   strPtr("Kansas sunrise - endless highways ahead!"),
					Location:  &Location{Lat: 39.0458, Lng: -95.6890, Address: strPtr("Lawrence, KS")},
					Timestamp: now.Add(-100 * time.Minute),
				},
			},
			Notes: strPtr("Good weather for riding. Kansas is flatter than expected but still beautiful in its own way."),
			Weather: &WeatherConditions{
				Temperature: 72, Condition: "Clear", Humidity: 38,
				WindSpeed: 12, WindDirection: 180,
				Visibility: floatPtr(15), Pressure: floatPtr(30.15),
				Icon: "clear-day",
			},
			IsPublic:      true,
			Tags:          []string{"cross-country", "adventure", "plains"},
			OdometerStart: floatPtr(13892),
		},
		{
			UserID:      DemoUserID,
			Title:       "Tail of the Dragon Weekend",
			Description: strPtr("Planning to tackle the famous 318 curves at Deals Gap this weekend."),
			Status:      StatusPlanned,
			StartLocation: Location{
				Lat: 35.5175, Lng: -83.9348,
				Address: strPtr("Deals Gap, TN, USA"),
			},
			EndLocation: &Location{
				Lat: 35.5175, Lng: -83.9348,
				Address: strPtr("Deals Gap, TN, USA"),
			},
			PlannedRoute: []Waypoint{
				{ID: uuid.NewString(), Lat: 35.5175, Lng: -83.9348, Altitude: floatPtr(1988), Timestamp: planned},
			},
			StartTime:       planned,
			PlannedDuration: floatPtr(240),
			Notes:           strPtr("Weather forecast looks good. Planning to meet up with the riding group at 8 AM."),
			Tags:            []string{"planned", "tail-of-dragon", "weekend", "curves"},
		},
	}
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
