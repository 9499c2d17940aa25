package core

import (
	"errors"
	"math"
	"strings"
	"time"
)

type (
	// Ride is one logged bike ride. Optional fields are nil when absent.
	Ride struct {
		ID            string    `json:"id"`
		Date          string    `json:"date"`
		DistanceMiles float64   `json:"distance_miles"`
		Notes         *string   `json:"notes"`
		LocationName  *string   `json:"location_name"`
		Latitude      *float64  `json:"latitude"`
		Longitude     *float64  `json:"longitude"`
		WeatherCode   *int      `json:"weather_code"`
		TemperatureC  *float64  `json:"temperature"`
		BuddyID       *string   `json:"buddy_id"`
		CreatedAt     time.Time `json:"created_at"`
	}

	// Buddy is a named riding companion a ride may reference.
	Buddy struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Notes     *string   `json:"notes"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Place is a geocoding candidate.
	Place struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}

	// WeatherSample is a single daily weather reading for a ride date.
	WeatherSample struct {
		Code         int     `json:"weather_code"`
		TemperatureC float64 `json:"temperature"`
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidDistance   = errors.New("invalid distance")
	ErrNegativeDistance  = errors.New("negative distance")
	ErrEmptyBuddyName    = errors.New("empty buddy name")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	ErrNotFound          = errors.New("not found")
)

// Validate checks the fields a ride must carry before it is stored.
// Stored rides are not required to pass it: the engine tolerates bad dates.
func (r Ride) Validate() error {
	if _, ok := ParseRideDate(r.Date); !ok {
		return ErrInvalidDate
	}
	if math.IsNaN(r.DistanceMiles) || math.IsInf(r.DistanceMiles, 0) {
		return ErrInvalidDistance
	}
	if r.DistanceMiles < 0 {
		return ErrNegativeDistance
	}
	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		return ErrInvalidCoordinate
	}
	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		return ErrInvalidCoordinate
	}
	return nil
}

// HasCoordinates reports whether the ride carries a geocoded position.
func (r Ride) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Validate checks a buddy before it is stored. Duplicate names are allowed.
func (b Buddy) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyBuddyName
	}
	return nil
}

// OptionalString trims s and returns nil when nothing is left.
func OptionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
