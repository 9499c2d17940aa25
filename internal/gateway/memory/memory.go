package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"ridelog/internal/core"
	"ridelog/internal/gateway"
)

var _ gateway.Gateway = (*Store)(nil)

// Store keeps rides and buddies per user in process memory.
type Store struct {
	mu      sync.Mutex
	rides   map[string][]core.Ride
	buddies map[string][]core.Buddy
	now     func() time.Time
}

func New() *Store {
	return &Store{
		rides:   make(map[string][]core.Ride),
		buddies: make(map[string][]core.Buddy),
		now:     time.Now,
	}
}

type seedFile struct {
	UserID  string       `json:"user_id"`
	Rides   []core.Ride  `json:"rides"`
	Buddies []core.Buddy `json:"buddies"`
}

// NewFromFiles returns a store seeded from base/seed_rides.json when present.
// A missing or malformed seed file yields an empty store.
func NewFromFiles(base string) *Store {
	s := New()
	data, err := os.ReadFile(filepath.Join(base, "seed_rides.json"))
	if err != nil {
		return s
	}
	var seeds []seedFile
	if err := json.Unmarshal(data, &seeds); err != nil {
		return s
	}
	for _, seed := range seeds {
		userID := strings.TrimSpace(seed.UserID)
		if userID == "" {
			continue
		}
		for _, r := range seed.Rides {
			if r.ID == "" {
				r.ID = uuid.NewString()
			}
			s.rides[userID] = append(s.rides[userID], r)
		}
		for _, b := range seed.Buddies {
			if b.ID == "" {
				b.ID = uuid.NewString()
			}
			s.buddies[userID] = append(s.buddies[userID], b)
		}
	}
	return s
}

// ListRides returns a copy of the user's rides.
func (s *Store) ListRides(_ context.Context, userID string) ([]core.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Ride(nil), s.rides[userID]...), nil
}

func (s *Store) InsertRide(_ context.Context, userID string, r core.Ride) (core.Ride, error) {
	if err := r.Validate(); err != nil {
		return core.Ride{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = s.now().UTC()
	s.rides[userID] = append(s.rides[userID], r)
	return r, nil
}

func (s *Store) GetRide(_ context.Context, userID, rideID string) (core.Ride, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rides[userID] {
		if r.ID == rideID {
			return r, nil
		}
	}
	return core.Ride{}, fmt.Errorf("ride %s: %w", rideID, core.ErrNotFound)
}

func (s *Store) UpdateRideWeather(_ context.Context, userID, rideID string, w core.WeatherSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rides := s.rides[userID]
	for i := range rides {
		if rides[i].ID == rideID {
			code, temp := w.Code, w.TemperatureC
			rides[i].WeatherCode = &code
			rides[i].TemperatureC = &temp
			return nil
		}
	}
	return fmt.Errorf("ride %s: %w", rideID, core.ErrNotFound)
}

func (s *Store) ListBuddies(_ context.Context, userID string) ([]core.Buddy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Buddy(nil), s.buddies[userID]...), nil
}

func (s *Store) InsertBuddy(_ context.Context, userID string, b core.Buddy) (core.Buddy, error) {
	if err := b.Validate(); err != nil {
		return core.Buddy{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = s.now().UTC()
	s.buddies[userID] = append(s.buddies[userID], b)
	return b, nil
}

func (s *Store) DeleteBuddy(_ context.Context, userID, buddyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buddies := s.buddies[userID]
	for i, b := range buddies {
		if b.ID == buddyID {
			s.buddies[userID] = append(buddies[:i:i], buddies[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("buddy %s: %w", buddyID, core.ErrNotFound)
}
