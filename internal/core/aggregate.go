package core

import (
	"math"
	"sort"
	"time"
)

// MonthGroup is a derived bucket of rides sharing a calendar year and month.
type MonthGroup struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"` // 1-12
	Label         string     `json:"label"`
	Rides         []Ride     `json:"rides"`
	TotalDistance float64    `json:"total_distance"`
}

// MonthlyPoint is one entry of the dashboard's per-month chart series.
type MonthlyPoint struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Label    string     `json:"label"`
	Distance float64    `json:"distance"`
	Rides    int        `json:"rides"`
}

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) index() int {
	return k.year*12 + int(k.month) - 1
}

// GroupByMonth partitions rides into month groups, most recent month first.
//
// Rides keep their input order inside a group and totals are summed in that
// order. Rides whose date does not parse are skipped.
func GroupByMonth(rides []Ride) []MonthGroup {
	byKey := make(map[monthKey]int)
	var groups []MonthGroup

	for _, r := range rides {
		d, ok := ParseRideDate(r.Date)
		if !ok {
			continue
		}
		k := monthKey{year: d.Year(), month: d.Month()}
		i, exists := byKey[k]
		if !exists {
			i = len(groups)
			byKey[k] = i
			groups = append(groups, MonthGroup{
				Year:  k.year,
				Month: k.month,
				Label: MonthLabel(k.year, k.month),
			})
		}
		groups[i].Rides = append(groups[i].Rides, r)
	}

	for i := range groups {
		var total float64
		for _, r := range groups[i].Rides {
			total += r.DistanceMiles
		}
		groups[i].TotalDistance = total
	}

	sort.Slice(groups, func(a, b int) bool {
		ka := monthKey{groups[a].Year, groups[a].Month}
		kb := monthKey{groups[b].Year, groups[b].Month}
		return ka.index() > kb.index()
	})
	return groups
}

// SortByDate returns a copy of rides ordered by date. The sort is stable and
// rides with unparseable dates always come last.
func SortByDate(rides []Ride, desc bool) []Ride {
	type dated struct {
		ride Ride
		t    time.Time
		ok   bool
	}
	items := make([]dated, len(rides))
	for i, r := range rides {
		t, ok := ParseRideDate(r.Date)
		items[i] = dated{ride: r, t: t, ok: ok}
	}

	sort.SliceStable(items, func(a, b int) bool {
		ia, ib := items[a], items[b]
		if ia.ok != ib.ok {
			return ia.ok
		}
		if !ia.ok {
			return false
		}
		if desc {
			return ia.t.After(ib.t)
		}
		return ia.t.Before(ib.t)
	})

	out := make([]Ride, len(items))
	for i, it := range items {
		out[i] = it.ride
	}
	return out
}

// RecentRides returns up to n rides, newest first.
func RecentRides(rides []Ride, n int) []Ride {
	if n <= 0 {
		return nil
	}
	sorted := SortByDate(rides, true)
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// MonthlySeries returns per-month distance and ride counts in ascending month
// order, keeping only the last limit months that have rides. Distances are
// rounded to whole miles. A limit of zero or less keeps every month.
func MonthlySeries(rides []Ride, limit int) []MonthlyPoint {
	groups := GroupByMonth(rides)
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	points := make([]MonthlyPoint, 0, len(groups))
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		points = append(points, MonthlyPoint{
			Year:     g.Year,
			Month:    g.Month,
			Label:    ShortMonthLabel(g.Year, g.Month),
			Distance: math.Round(g.TotalDistance),
			Rides:    len(g.Rides),
		})
	}
	return points
}
