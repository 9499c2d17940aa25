package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ridelog/internal/cache"
	"ridelog/internal/core"
	"ridelog/internal/gateway"
)

const (
	dashboardMonths = 12
	dashboardRecent = 5
)

type (
	// History is the month-grouped ride list.
	History struct {
		Months []core.MonthGroup `json:"months"`
		Count  int               `json:"count"`
	}

	// RecentRide is a ride with its buddy reference resolved for display.
	// BuddyName is empty for solo rides and for buddies that no longer exist.
	RecentRide struct {
		core.Ride
		BuddyName string `json:"buddy_name,omitempty"`
	}

	Dashboard struct {
		Stats   core.Stats          `json:"stats"`
		Monthly []core.MonthlyPoint `json:"monthly"`
		Recent  []RecentRide        `json:"recent"`
	}

	historyStore interface {
		gateway.RideLister
		ListBuddies(ctx context.Context, userID string) ([]core.Buddy, error)
	}
)

// HistoryService assembles read views over a user's rides. When a cache is
// given, ride lists are kept per user until Invalidate is called.
type HistoryService struct {
	store historyStore
	rides cache.Cache[[]core.Ride]
}

func NewHistoryService(store historyStore, rides cache.Cache[[]core.Ride]) *HistoryService {
	return &HistoryService{store: store, rides: rides}
}

// Invalidate drops the cached rides for a user after a write.
func (s *HistoryService) Invalidate(userID string) {
	if s.rides != nil {
		s.rides.Delete(userID)
	}
}

func (s *HistoryService) listRides(ctx context.Context, userID string) ([]core.Ride, error) {
	if s.rides != nil {
		if rides, ok := s.rides.Get(userID); ok {
			return rides, nil
		}
	}
	rides, err := s.store.ListRides(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	if s.rides != nil {
		s.rides.Set(userID, rides)
	}
	return rides, nil
}

// RideHistory returns the user's rides matching query, newest month first.
func (s *HistoryService) RideHistory(ctx context.Context, userID, query string) (History, error) {
	rides, err := s.listRides(ctx, userID)
	if err != nil {
		return History{}, err
	}
	matched := core.FilterRides(core.SortByDate(rides, true), query)
	months := core.GroupByMonth(matched)

	count := 0
	for _, m := range months {
		count += len(m.Rides)
	}
	slog.DebugContext(ctx, "Ride history assembled",
		"user_id", userID, "rides", len(rides), "matched", count, "months", len(months))
	return History{Months: months, Count: count}, nil
}

// Dashboard computes statistics relative to now.
func (s *HistoryService) Dashboard(ctx context.Context, userID string, now time.Time) (Dashboard, error) {
	var (
		rides   []core.Ride
		buddies []core.Buddy
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rides, err = s.listRides(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		buddies, err = s.store.ListBuddies(gctx, userID)
		if err != nil {
			return fmt.Errorf("list buddies: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	recent := core.RecentRides(rides, dashboardRecent)
	resolved := make([]RecentRide, 0, len(recent))
	for _, r := range recent {
		rr := RecentRide{Ride: r}
		if b, ok := core.ResolveBuddy(buddies, r.BuddyID); ok {
			rr.BuddyName = b.Name
		}
		resolved = append(resolved, rr)
	}

	return Dashboard{
		Stats:   core.ComputeStats(rides, now),
		Monthly: core.MonthlySeries(rides, dashboardMonths),
		Recent:  resolved,
	}, nil
}
