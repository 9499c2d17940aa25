package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ridelog/internal/amqp"
	"ridelog/internal/core"
	"ridelog/internal/gateway"
	"ridelog/internal/services"
	"ridelog/internal/sheets"
)

// Store is what the worker needs from the gateway.
type Store interface {
	gateway.RideReader
	gateway.RideUpdater
	ListBuddies(ctx context.Context, userID string) ([]core.Buddy, error)
}

// RideWorker reacts to ride created events: it fills in weather the API
// could not fetch at save time and exports the ride to Google Sheets.
type RideWorker struct {
	store    Store
	weather  services.WeatherProvider
	exporter sheets.RideExporter
}

// NewRideWorker accepts a nil weather provider or exporter to disable that step.
func NewRideWorker(store Store, weather services.WeatherProvider, exporter sheets.RideExporter) *RideWorker {
	return &RideWorker{store: store, weather: weather, exporter: exporter}
}

// HandleRideCreated processes one message. A returned error requeues it.
func (w *RideWorker) HandleRideCreated(ctx context.Context, msg *amqp.RideCreatedMessage) error {
	slog.InfoContext(ctx, "Processing ride created message",
		"ride_id", msg.RideID,
		"user_id", msg.UserID)

	ride, err := w.store.GetRide(ctx, msg.UserID, msg.RideID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Ride no longer exists, dropping message", "ride_id", msg.RideID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get ride: %w", err)
	}

	ride = w.backfillWeather(ctx, msg.UserID, ride)

	if err := w.export(ctx, msg.UserID, ride); err != nil {
		return fmt.Errorf("export ride: %w", err)
	}
	return nil
}

func (w *RideWorker) backfillWeather(ctx context.Context, userID string, ride core.Ride) core.Ride {
	if w.weather == nil || ride.WeatherCode != nil || !ride.HasCoordinates() {
		return ride
	}

	sample, err := w.weather.Weather(ctx, *ride.Latitude, *ride.Longitude, ride.Date)
	if err != nil {
		slog.WarnContext(ctx, "Weather backfill failed", "ride_id", ride.ID, "error", err)
		return ride
	}
	if sample == nil {
		return ride
	}
	if err := w.store.UpdateRideWeather(ctx, userID, ride.ID, *sample); err != nil {
		slog.ErrorContext(ctx, "Failed to store backfilled weather", "ride_id", ride.ID, "error", err)
		return ride
	}

	code, temp := sample.Code, sample.TemperatureC
	ride.WeatherCode = &code
	ride.TemperatureC = &temp
	slog.InfoContext(ctx, "Weather backfilled",
		"ride_id", ride.ID,
		"weather_code", code,
		"temperature", temp)
	return ride
}

func (w *RideWorker) export(ctx context.Context, userID string, ride core.Ride) error {
	if w.exporter == nil {
		return nil
	}

	var buddyName string
	if ride.BuddyID != nil {
		buddies, err := w.store.ListBuddies(ctx, userID)
		if err != nil {
			return fmt.Errorf("list buddies: %w", err)
		}
		if b, ok := core.ResolveBuddy(buddies, ride.BuddyID); ok {
			buddyName = b.Name
		}
	}

	ref, err := w.exporter.ExportRide(ctx, ride, buddyName)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Ride exported", "ride_id", ride.ID, "sheets_ref", ref)
	return nil
}
