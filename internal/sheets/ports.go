package sheets

import (
	"context"
	"strconv"

	"ridelog/internal/core"
)

// Header is the column layout of an exported ride row.
var Header = []any{"Date", "Distance (mi)", "Location", "Weather", "Temperature (°C)", "Buddy", "Notes", "Ride ID"}

// Ports for outbound adapters.
type (
	// RideExporter appends a ride to an external spreadsheet and returns a
	// reference to the written row.
	RideExporter interface {
		ExportRide(ctx context.Context, r core.Ride, buddyName string) (rowRef string, err error)
	}
)

// RideRow renders a ride in Header order. An empty buddyName is a solo ride.
func RideRow(r core.Ride, buddyName string) []any {
	location, weather, temperature, notes := "", "", "", ""
	if r.LocationName != nil {
		location = *r.LocationName
	}
	if r.WeatherCode != nil {
		weather = core.ConditionFor(*r.WeatherCode).Label()
	}
	if r.TemperatureC != nil {
		temperature = strconv.FormatFloat(*r.TemperatureC, 'f', 1, 64)
	}
	if r.Notes != nil {
		notes = *r.Notes
	}
	if buddyName == "" {
		buddyName = "Solo"
	}
	return []any{
		r.Date,
		strconv.FormatFloat(r.DistanceMiles, 'f', -1, 64),
		location,
		weather,
		temperature,
		buddyName,
		notes,
		r.ID,
	}
}
