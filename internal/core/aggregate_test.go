package core

import (
	"math"
	"testing"
	"time"
)

func ride(id, date string, miles float64) Ride {
	return Ride{ID: id, Date: date, DistanceMiles: miles}
}

func TestGroupByMonthExample(t *testing.T) {
	rides := []Ride{
		ride("a", "2025-01-05", 10),
		ride("b", "2025-01-20", 5),
		ride("c", "2025-02-01", 8),
	}

	groups := GroupByMonth(rides)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	if groups[0].Year != 2025 || groups[0].Month != time.February || groups[0].TotalDistance != 8 {
		t.Fatalf("unexpected first group: %+v", groups[0])
	}
	if groups[1].Year != 2025 || groups[1].Month != time.January || groups[1].TotalDistance != 15 {
		t.Fatalf("unexpected second group: %+v", groups[1])
	}
	if groups[0].Label != "February 2025" || groups[1].Label != "January 2025" {
		t.Fatalf("unexpected labels: %q %q", groups[0].Label, groups[1].Label)
	}
}

func TestGroupByMonthPreservesInputOrder(t *testing.T) {
	rides := []Ride{
		ride("late", "2025-03-28", 1),
		ride("early", "2025-03-02", 2),
		ride("mid", "2025-03-15", 3),
	}

	groups := GroupByMonth(rides)
	if len(groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(groups))
	}
	got := []string{}
	for _, r := range groups[0].Rides {
		got = append(got, r.ID)
	}
	want := []string{"late", "early", "mid"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestGroupByMonthPartitionsAndSkipsBadDates(t *testing.T) {
	rides := []Ride{
		ride("1", "2024-12-31", 4),
		ride("2", "not-a-date", 100),
		ride("3", "2025-01-01", 2),
		ride("4", "", 7),
		ride("5", "2023-06-10T08:00:00Z", 3),
		ride("6", "2025-01-31", 1.5),
		ride("7", "2024-12-01", 6),
	}

	groups := GroupByMonth(rides)

	seen := map[string]int{}
	total := 0
	for _, g := range groups {
		total += len(g.Rides)
		var sum float64
		for _, r := range g.Rides {
			seen[r.ID]++
			d, ok := ParseRideDate(r.Date)
			if !ok || d.Year() != g.Year || d.Month() != g.Month {
				t.Fatalf("ride %s misplaced in %d-%02d", r.ID, g.Year, g.Month)
			}
			sum += r.DistanceMiles
		}
		if sum != g.TotalDistance {
			t.Fatalf("group %s total %v, want %v", g.Label, g.TotalDistance, sum)
		}
	}

	unparseable := 2
	if total+unparseable != len(rides) {
		t.Fatalf("grouped %d + unparseable %d != %d", total, unparseable, len(rides))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("ride %s appears %d times", id, n)
		}
	}
	if seen["2"] != 0 || seen["4"] != 0 {
		t.Fatalf("unparseable rides were grouped")
	}

	for i := 1; i < len(groups); i++ {
		prev := groups[i-1].Year*12 + int(groups[i-1].Month)
		cur := groups[i].Year*12 + int(groups[i].Month)
		if prev <= cur {
			t.Fatalf("groups not strictly descending at %d: %s then %s", i, groups[i-1].Label, groups[i].Label)
		}
	}
}

func TestGroupByMonthEmpty(t *testing.T) {
	if got := GroupByMonth(nil); len(got) != 0 {
		t.Fatalf("expected no groups, got %v", got)
	}
}

func TestSortByDate(t *testing.T) {
	rides := []Ride{
		ride("bad", "??", 1),
		ride("b", "2025-02-01", 1),
		ride("a", "2025-01-01", 1),
		ride("a2", "2025-01-01", 1),
		ride("c", "2025-03-01", 1),
	}

	ids := func(rs []Ride) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name string
		desc bool
		want []string
	}{
		{"ascending", false, []string{"a", "a2", "b", "c", "bad"}},
		{"descending", true, []string{"c", "b", "a", "a2", "bad"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(SortByDate(rides, tt.desc))
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}

	if rides[0].ID != "bad" {
		t.Fatalf("input slice was modified")
	}
}

func TestRecentRides(t *testing.T) {
	var rides []Ride
	for d := 1; d <= 8; d++ {
		rides = append(rides, ride(string(rune('a'+d-1)), time.Date(2025, 4, d, 0, 0, 0, 0, time.UTC).Format("2006-01-02"), float64(d)))
	}

	recent := RecentRides(rides, 5)
	if len(recent) != 5 {
		t.Fatalf("expected 5 rides, got %d", len(recent))
	}
	if recent[0].Date != "2025-04-08" || recent[4].Date != "2025-04-04" {
		t.Fatalf("unexpected recent order: first=%s last=%s", recent[0].Date, recent[4].Date)
	}
	if got := RecentRides(rides, 0); got != nil {
		t.Fatalf("expected nil for n=0")
	}
}

func TestMonthlySeries(t *testing.T) {
	var rides []Ride
	// 14 months, one ride each, Jan 2024 .. Feb 2025
	for i := 0; i < 14; i++ {
		d := time.Date(2024, time.January+time.Month(i), 10, 0, 0, 0, 0, time.UTC)
		rides = append(rides, ride("r", d.Format("2006-01-02"), 10.4))
	}
	rides = append(rides, ride("extra", "2025-02-20", 0.3), ride("bad", "nope", 50))

	points := MonthlySeries(rides, 12)
	if len(points) != 12 {
		t.Fatalf("expected 12 points, got %d", len(points))
	}
	if points[0].Year != 2024 || points[0].Month != time.March {
		t.Fatalf("first point = %d-%02d, want 2024-03", points[0].Year, points[0].Month)
	}
	last := points[len(points)-1]
	if last.Year != 2025 || last.Month != time.February || last.Rides != 2 {
		t.Fatalf("unexpected last point: %+v", last)
	}
	if last.Distance != math.Round(10.7) || last.Label != "Feb 25" {
		t.Fatalf("unexpected last point values: %+v", last)
	}
}
