package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ridelog/internal/core"
	"ridelog/internal/gateway"

	_ "modernc.org/sqlite"
)

var _ gateway.Gateway = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// ListRides implements gateway.RideLister
func (r *SQLiteRepository) ListRides(ctx context.Context, userID string) ([]core.Ride, error) {
	rows, err := r.queries.ListRidesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	rides := make([]core.Ride, 0, len(rows))
	for _, row := range rows {
		rides = append(rides, rideFromRow(row))
	}
	return rides, nil
}

// InsertRide implements gateway.RideWriter
func (r *SQLiteRepository) InsertRide(ctx context.Context, userID string, ride core.Ride) (core.Ride, error) {
	if err := ride.Validate(); err != nil {
		return core.Ride{}, err
	}
	if ride.ID == "" {
		ride.ID = uuid.NewString()
	}
	ride.CreatedAt = r.now().UTC()

	if err := r.queries.CreateRide(ctx, rowFromRide(userID, ride)); err != nil {
		return core.Ride{}, fmt.Errorf("create ride: %w", err)
	}

	slog.InfoContext(ctx, "Ride saved to SQLite",
		"id", ride.ID,
		"user_id", userID,
		"date", ride.Date,
		"distance_miles", ride.DistanceMiles)

	return ride, nil
}

// GetRide implements gateway.RideReader
func (r *SQLiteRepository) GetRide(ctx context.Context, userID, rideID string) (core.Ride, error) {
	row, err := r.queries.GetRide(ctx, userID, rideID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Ride{}, fmt.Errorf("ride %s: %w", rideID, core.ErrNotFound)
	}
	if err != nil {
		return core.Ride{}, fmt.Errorf("get ride %s: %w", rideID, err)
	}
	return rideFromRow(row), nil
}

// UpdateRideWeather implements gateway.RideUpdater
func (r *SQLiteRepository) UpdateRideWeather(ctx context.Context, userID, rideID string, w core.WeatherSample) error {
	n, err := r.queries.UpdateRideWeather(ctx, userID, rideID, int64(w.Code), w.TemperatureC)
	if err != nil {
		return fmt.Errorf("update ride weather: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("ride %s: %w", rideID, core.ErrNotFound)
	}
	slog.DebugContext(ctx, "Ride weather updated",
		"id", rideID,
		"weather_code", w.Code,
		"temperature", w.TemperatureC)
	return nil
}

// ListBuddies implements gateway.BuddyStore
func (r *SQLiteRepository) ListBuddies(ctx context.Context, userID string) ([]core.Buddy, error) {
	rows, err := r.queries.ListBuddiesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list buddies: %w", err)
	}
	buddies := make([]core.Buddy, 0, len(rows))
	for _, row := range rows {
		buddies = append(buddies, core.Buddy{
			ID:        row.ID,
			Name:      row.Name,
			Notes:     stringPtr(row.Notes),
			CreatedAt: row.CreatedAt.Time,
		})
	}
	return buddies, nil
}

// InsertBuddy implements gateway.BuddyStore
func (r *SQLiteRepository) InsertBuddy(ctx context.Context, userID string, b core.Buddy) (core.Buddy, error) {
	if err := b.Validate(); err != nil {
		return core.Buddy{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = r.now().UTC()

	err := r.queries.CreateBuddy(ctx, Buddy{
		ID:        b.ID,
		UserID:    userID,
		Name:      b.Name,
		Notes:     nullString(b.Notes),
		CreatedAt: nullTime(b.CreatedAt),
	})
	if err != nil {
		return core.Buddy{}, fmt.Errorf("create buddy: %w", err)
	}
	slog.InfoContext(ctx, "Buddy saved to SQLite", "id", b.ID, "user_id", userID)
	return b, nil
}

// DeleteBuddy implements gateway.BuddyStore. Rides referencing the buddy are
// left untouched.
func (r *SQLiteRepository) DeleteBuddy(ctx context.Context, userID, buddyID string) error {
	n, err := r.queries.DeleteBuddy(ctx, userID, buddyID)
	if err != nil {
		return fmt.Errorf("delete buddy: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("buddy %s: %w", buddyID, core.ErrNotFound)
	}
	slog.InfoContext(ctx, "Buddy deleted", "id", buddyID, "user_id", userID)
	return nil
}

// HealthCheck verifies the database answers a trivial query.
func (r *SQLiteRepository) HealthCheck(ctx context.Context) error {
	if _, err := r.queries.CountRides(ctx); err != nil {
		return fmt.Errorf("count rides: %w", err)
	}
	return nil
}

func rowFromRide(userID string, ride core.Ride) Ride {
	return Ride{
		ID:            ride.ID,
		UserID:        userID,
		Date:          ride.Date,
		DistanceMiles: ride.DistanceMiles,
		Notes:         nullString(ride.Notes),
		LocationName:  nullString(ride.LocationName),
		Latitude:      nullFloat(ride.Latitude),
		Longitude:     nullFloat(ride.Longitude),
		WeatherCode:   nullInt(ride.WeatherCode),
		Temperature:   nullFloat(ride.TemperatureC),
		BuddyID:       nullString(ride.BuddyID),
		CreatedAt:     nullTime(ride.CreatedAt),
	}
}

func rideFromRow(row Ride) core.Ride {
	ride := core.Ride{
		ID:            row.ID,
		Date:          row.Date,
		DistanceMiles: row.DistanceMiles,
		Notes:         stringPtr(row.Notes),
		LocationName:  stringPtr(row.LocationName),
		Latitude:      floatPtr(row.Latitude),
		Longitude:     floatPtr(row.Longitude),
		TemperatureC:  floatPtr(row.Temperature),
		BuddyID:       stringPtr(row.BuddyID),
		CreatedAt:     row.CreatedAt.Time,
	}
	if row.WeatherCode.Valid {
		code := int(row.WeatherCode.Int64)
		ride.WeatherCode = &code
	}
	return ride
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
