package worker

import (
	"context"
	"errors"
	"testing"

	"ridelog/internal/amqp"
	"ridelog/internal/core"
	"ridelog/internal/gateway/memory"
)

type stubWeather struct {
	sample *core.WeatherSample
	err    error
	calls  int
}

func (s *stubWeather) Weather(context.Context, float64, float64, string) (*core.WeatherSample, error) {
	s.calls++
	return s.sample, s.err
}

type exported struct {
	ride  core.Ride
	buddy string
}

type stubExporter struct {
	rows []exported
	err  error
}

func (s *stubExporter) ExportRide(_ context.Context, r core.Ride, buddyName string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.rows = append(s.rows, exported{r, buddyName})
	return "2025 Rides!A2:H2", nil
}

func TestHandleRideCreatedBackfillsAndExports(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	alex, _ := store.InsertBuddy(ctx, "u1", core.Buddy{Name: "Alex"})
	lat, lon := 53.8, -1.55
	ride, _ := store.InsertRide(ctx, "u1", core.Ride{
		Date: "2025-01-05", DistanceMiles: 10, Latitude: &lat, Longitude: &lon, BuddyID: &alex.ID,
	})

	wx := &stubWeather{sample: &core.WeatherSample{Code: 61, TemperatureC: 8}}
	exp := &stubExporter{}
	w := NewRideWorker(store, wx, exp)

	if err := w.HandleRideCreated(ctx, &amqp.RideCreatedMessage{RideID: ride.ID, UserID: "u1"}); err != nil {
		t.Fatalf("handle: %v", err)
	}

	stored, _ := store.GetRide(ctx, "u1", ride.ID)
	if stored.WeatherCode == nil || *stored.WeatherCode != 61 {
		t.Fatalf("weather not backfilled: %+v", stored)
	}
	if len(exp.rows) != 1 || exp.rows[0].buddy != "Alex" || exp.rows[0].ride.WeatherCode == nil {
		t.Fatalf("unexpected export %+v", exp.rows)
	}
}

func TestHandleRideCreatedSkipsKnownWeather(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	lat, lon, code := 1.0, 2.0, 3
	ride, _ := store.InsertRide(ctx, "u1", core.Ride{Date: "2025-01-05", Latitude: &lat, Longitude: &lon, WeatherCode: &code})

	wx := &stubWeather{}
	exp := &stubExporter{}
	if err := NewRideWorker(store, wx, exp).HandleRideCreated(ctx, &amqp.RideCreatedMessage{RideID: ride.ID, UserID: "u1"}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if wx.calls != 0 {
		t.Fatalf("weather should not be refetched")
	}
	if exp.rows[0].buddy != "" {
		t.Fatalf("solo ride should export without buddy")
	}
}

func TestHandleRideCreatedErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	w := NewRideWorker(store, nil, &stubExporter{})
	if err := w.HandleRideCreated(ctx, &amqp.RideCreatedMessage{RideID: "gone", UserID: "u1"}); err != nil {
		t.Fatalf("missing ride should be dropped, got %v", err)
	}

	ride, _ := store.InsertRide(ctx, "u1", core.Ride{Date: "2025-01-05", DistanceMiles: 2})
	failing := NewRideWorker(store, &stubWeather{err: errors.New("down")}, &stubExporter{err: errors.New("quota")})
	if err := failing.HandleRideCreated(ctx, &amqp.RideCreatedMessage{RideID: ride.ID, UserID: "u1"}); err == nil {
		t.Fatalf("export failure should requeue")
	}

	if err := NewRideWorker(store, nil, nil).HandleRideCreated(ctx, &amqp.RideCreatedMessage{RideID: ride.ID, UserID: "u1"}); err != nil {
		t.Fatalf("no exporter configured: %v", err)
	}
}
