package core

import "strings"

// FilterRides keeps the rides whose location, notes or display date contain
// query, ignoring case. A blank query returns rides unchanged.
func FilterRides(rides []Ride, query string) []Ride {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return rides
	}

	out := make([]Ride, 0, len(rides))
	for _, r := range rides {
		if rideMatches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func rideMatches(r Ride, q string) bool {
	if r.LocationName != nil && strings.Contains(strings.ToLower(*r.LocationName), q) {
		return true
	}
	if r.Notes != nil && strings.Contains(strings.ToLower(*r.Notes), q) {
		return true
	}
	if d := DisplayDate(r.Date); d != "" && strings.Contains(strings.ToLower(d), q) {
		return true
	}
	return false
}
