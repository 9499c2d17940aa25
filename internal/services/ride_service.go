package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ridelog/internal/core"
	"ridelog/internal/gateway"
)

type (
	// Geocoder resolves a free-text location to candidate places.
	Geocoder interface {
		Geocode(ctx context.Context, query string) ([]core.Place, error)
	}

	// WeatherProvider returns the daily weather at a position, or nil when unknown.
	WeatherProvider interface {
		Weather(ctx context.Context, lat, lon float64, date string) (*core.WeatherSample, error)
	}

	// Publisher announces stored rides to downstream consumers.
	Publisher interface {
		PublishRideCreated(ctx context.Context, userID, rideID string) error
	}
)

// RideInput is what a caller submits to log a ride. LocationQuery is geocoded
// when no explicit coordinates are given.
type RideInput struct {
	Date          string   `json:"date"`
	DistanceMiles float64  `json:"distance_miles"`
	Notes         string   `json:"notes"`
	LocationQuery string   `json:"location_query"`
	LocationName  string   `json:"location_name"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	BuddyID       string   `json:"buddy_id"`
}

// ValidationError marks input the caller must correct.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid input: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err was caused by bad caller input.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// RideService stores rides, enriching them with location and weather on the
// way in. Enrichment and publishing are best effort.
type RideService struct {
	rides     gateway.RideWriter
	geocoder  Geocoder
	weather   WeatherProvider
	publisher Publisher
}

// NewRideService accepts nil collaborators for any optional step.
func NewRideService(rides gateway.RideWriter, geocoder Geocoder, weather WeatherProvider, publisher Publisher) *RideService {
	return &RideService{
		rides:     rides,
		geocoder:  geocoder,
		weather:   weather,
		publisher: publisher,
	}
}

func (s *RideService) CreateRide(ctx context.Context, userID string, in RideInput) (core.Ride, error) {
	ride := core.Ride{
		Date:          strings.TrimSpace(in.Date),
		DistanceMiles: in.DistanceMiles,
		Notes:         core.OptionalString(in.Notes),
		LocationName:  core.OptionalString(in.LocationName),
		Latitude:      in.Latitude,
		Longitude:     in.Longitude,
		BuddyID:       core.OptionalString(in.BuddyID),
	}
	if (ride.Latitude == nil) != (ride.Longitude == nil) {
		return core.Ride{}, &ValidationError{Err: core.ErrInvalidCoordinate}
	}
	if err := ride.Validate(); err != nil {
		return core.Ride{}, &ValidationError{Err: err}
	}

	s.locate(ctx, &ride, in.LocationQuery)
	s.observeWeather(ctx, &ride)

	saved, err := s.rides.InsertRide(ctx, userID, ride)
	if err != nil {
		return core.Ride{}, fmt.Errorf("save ride: %w", err)
	}

	if err := s.publish(ctx, userID, saved.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ride created message",
			"ride_id", saved.ID, "user_id", userID, "error", err)
	}
	return saved, nil
}

func (s *RideService) locate(ctx context.Context, ride *core.Ride, query string) {
	query = strings.TrimSpace(query)
	if ride.HasCoordinates() || query == "" || s.geocoder == nil {
		return
	}
	places, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		slog.WarnContext(ctx, "Geocoding failed, saving ride without coordinates",
			"query", query, "error", err)
		return
	}
	if len(places) == 0 {
		slog.InfoContext(ctx, "No geocoding match", "query", query)
		return
	}
	best := places[0]
	ride.Latitude = &best.Latitude
	ride.Longitude = &best.Longitude
	if ride.LocationName == nil {
		ride.LocationName = core.OptionalString(best.Name)
	}
}

func (s *RideService) observeWeather(ctx context.Context, ride *core.Ride) {
	if !ride.HasCoordinates() || s.weather == nil {
		return
	}
	sample, err := s.weather.Weather(ctx, *ride.Latitude, *ride.Longitude, ride.Date)
	if err != nil {
		slog.WarnContext(ctx, "Weather lookup failed, saving ride without weather",
			"date", ride.Date, "error", err)
		return
	}
	if sample == nil {
		return
	}
	code, temp := sample.Code, sample.TemperatureC
	ride.WeatherCode = &code
	ride.TemperatureC = &temp
}

func (s *RideService) publish(ctx context.Context, userID, rideID string) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not configured, skipping ride created message")
		return nil
	}
	return s.publisher.PublishRideCreated(ctx, userID, rideID)
}
