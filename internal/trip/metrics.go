package trip

import (
	"github.com/ssoward/evyroad/pkg/geo"
)

// RecalculateMetrics rewrites t.Metrics from the waypoint sequence.
// With fewer than two waypoints all figures reset to zero. Total time
// is wall-clock minutes between trip start and end (zero while the trip
// is open), independent of waypoint timestamps.
//
// Average speed is the arithmetic mean of per-segment speeds rather
// than total distance over total time. That matches the behavior this
// service has always had; callers depending on the published figures
// would notice a change.
func RecalculateMetrics(t *Trip) {
	if len(t.Waypoints) < 2 {
		t.Metrics = Metrics{}
		return
	}

	var totalDistance, maxSpeed float64
	var speeds []float64

	for i := 1; i < len(t.Waypoints); i++ {
		prev := t.Waypoints[i-1]
		curr := t.Waypoints[i]

		distance := geo.DistanceKm(prev.Lat, prev.Lng, curr.Lat, curr.Lng)
		totalDistance += distance

		if curr.Speed != nil {
			speeds = append(speeds, *curr.Speed)
			if *curr.Speed > maxSpeed {
				maxSpeed = *curr.Speed
			}
			continue
		}

		elapsedHours := curr.Timestamp.Sub(prev.Timestamp).Hours()
		if elapsedHours > 0 {
			speed := distance / elapsedHours
			speeds = append(speeds, speed)
			if speed > maxSpeed {
				maxSpeed = speed
			}
		}
	}

	var totalTime float64
	if t.EndTime != nil {
		totalTime = t.EndTime.Sub(t.StartTime).Minutes()
	}

	var avgSpeed float64
	if len(speeds) > 0 {
		var sum float64
		for _, s := range speeds {
			sum += s
		}
		avgSpeed = sum / float64(len(speeds))
	}

	t.Metrics = Metrics{
		TotalDistance: totalDistance,
		TotalTime:     totalTime,
		AvgSpeed:      avgSpeed,
		MaxSpeed:      maxSpeed,
	}
}
