package core

import "time"

// Stats is the dashboard summary over a set of rides.
type Stats struct {
	TotalDistance  float64 `json:"total_distance"`
	TotalRides     int     `json:"total_rides"`
	AvgDistance    float64 `json:"avg_distance"`
	LongestRide    float64 `json:"longest_ride"`
	RidesThisMonth int     `json:"rides_this_month"`
}

// ComputeStats summarizes rides relative to now. Rides with unparseable dates
// count towards the totals but never towards RidesThisMonth.
func ComputeStats(rides []Ride, now time.Time) Stats {
	var s Stats
	year, month := now.Year(), now.Month()

	for _, r := range rides {
		s.TotalDistance += r.DistanceMiles
		if r.DistanceMiles > s.LongestRide {
			s.LongestRide = r.DistanceMiles
		}
		if d, ok := ParseRideDate(r.Date); ok && d.Year() == year && d.Month() == month {
			s.RidesThisMonth++
		}
	}

	s.TotalRides = len(rides)
	if s.TotalRides > 0 {
		s.AvgDistance = s.TotalDistance / float64(s.TotalRides)
	}
	return s
}
