package services

import (
	"context"
	"fmt"
	"strings"

	"ridelog/internal/core"
	"ridelog/internal/gateway"
)

type BuddyInput struct {
	Name  string `json:"name"`
	Notes string `json:"notes"`
}

// BuddyService manages a user's riding companions. Deleting a buddy never
// touches rides that reference it.
type BuddyService struct {
	store gateway.BuddyStore
}

func NewBuddyService(store gateway.BuddyStore) *BuddyService {
	return &BuddyService{store: store}
}

// ListBuddies returns the user's buddies ordered by name.
func (s *BuddyService) ListBuddies(ctx context.Context, userID string) ([]core.Buddy, error) {
	buddies, err := s.store.ListBuddies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list buddies: %w", err)
	}
	return core.SortBuddies(buddies), nil
}

func (s *BuddyService) AddBuddy(ctx context.Context, userID string, in BuddyInput) (core.Buddy, error) {
	b := core.Buddy{
		Name:  strings.TrimSpace(in.Name),
		Notes: core.OptionalString(in.Notes),
	}
	if err := b.Validate(); err != nil {
		return core.Buddy{}, &ValidationError{Err: err}
	}
	saved, err := s.store.InsertBuddy(ctx, userID, b)
	if err != nil {
		return core.Buddy{}, fmt.Errorf("save buddy: %w", err)
	}
	return saved, nil
}

func (s *BuddyService) DeleteBuddy(ctx context.Context, userID, buddyID string) error {
	if err := s.store.DeleteBuddy(ctx, userID, buddyID); err != nil {
		return fmt.Errorf("delete buddy: %w", err)
	}
	return nil
}
