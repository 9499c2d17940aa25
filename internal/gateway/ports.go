package gateway

import (
	"context"

	"ridelog/internal/core"
)

// Ports for the remote data gateway. Every call is scoped to an explicit user.
// Returned slices are in no particular order.
type (
	RideLister interface {
		ListRides(ctx context.Context, userID string) ([]core.Ride, error)
	}

	RideWriter interface {
		// InsertRide stores r and returns it with ID and CreatedAt populated.
		InsertRide(ctx context.Context, userID string, r core.Ride) (core.Ride, error)
	}

	RideReader interface {
		GetRide(ctx context.Context, userID, rideID string) (core.Ride, error)
	}

	// RideUpdater backfills enrichment data on an existing ride.
	RideUpdater interface {
		UpdateRideWeather(ctx context.Context, userID, rideID string, w core.WeatherSample) error
	}

	BuddyStore interface {
		ListBuddies(ctx context.Context, userID string) ([]core.Buddy, error)
		InsertBuddy(ctx context.Context, userID string, b core.Buddy) (core.Buddy, error)
		// DeleteBuddy removes the buddy only. Rides keep their reference.
		DeleteBuddy(ctx context.Context, userID, buddyID string) error
	}

	// Gateway is the full set of operations a backend provides.
	Gateway interface {
		RideLister
		RideWriter
		RideReader
		RideUpdater
		BuddyStore
	}
)
