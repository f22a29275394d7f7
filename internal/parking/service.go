package parking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service interface defines the contract for parking inventory operations
type Service interface {
	GetSpot(ctx context.Context, id uuid.UUID) (*ParkingSpot, error)
	// GetSpotGroup resolves the group a spot belongs to
	GetSpotGroup(ctx context.Context, spotID uuid.UUID) (uuid.UUID, error)
	ListGroups(ctx context.Context) ([]ParkingGroup, error)
	ListSpotsByGroup(ctx context.Context, groupID uuid.UUID) ([]ParkingSpot, error)
	// ListFreeSpots returns the active spots of a group with no confirmed
	// reservation for the date
	ListFreeSpots(ctx context.Context, groupID uuid.UUID, date time.Time) ([]ParkingSpot, error)
	// FindAlternateSpot searches one free spot for the date, preferring the
	// given group and falling back to its sibling groups. Returns nil when
	// nothing is free anywhere.
	FindAlternateSpot(ctx context.Context, preferredGroupID uuid.UUID, date time.Time, excludeSpotID uuid.UUID) (*ParkingSpot, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetSpot(ctx context.Context, id uuid.UUID) (*ParkingSpot, error) {
	return s.repo.GetSpot(ctx, id)
}

func (s *service) GetSpotGroup(ctx context.Context, spotID uuid.UUID) (uuid.UUID, error) {
	spot, err := s.repo.GetSpot(ctx, spotID)
	if err != nil {
		return uuid.Nil, err
	}
	return spot.GroupID, nil
}

func (s *service) ListGroups(ctx context.Context) ([]ParkingGroup, error) {
	return s.repo.ListGroups(ctx)
}

func (s *service) ListSpotsByGroup(ctx context.Context, groupID uuid.UUID) ([]ParkingSpot, error) {
	return s.repo.ListSpotsByGroup(ctx, groupID)
}

func (s *service) ListFreeSpots(ctx context.Context, groupID uuid.UUID, date time.Time) ([]ParkingSpot, error) {
	return s.repo.FindFreeSpotsInGroup(ctx, groupID, date)
}

func (s *service) FindAlternateSpot(ctx context.Context, preferredGroupID uuid.UUID, date time.Time, excludeSpotID uuid.UUID) (*ParkingSpot, error) {
	if spot, err := s.pickFree(ctx, preferredGroupID, date, excludeSpotID); err != nil || spot != nil {
		return spot, err
	}

	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sibling groups: %w", err)
	}
	for _, g := range groups {
		if g.ID == preferredGroupID {
			continue
		}
		spot, err := s.pickFree(ctx, g.ID, date, excludeSpotID)
		if err != nil {
			return nil, err
		}
		if spot != nil {
			return spot, nil
		}
	}
	return nil, nil
}

func (s *service) pickFree(ctx context.Context, groupID uuid.UUID, date time.Time, excludeSpotID uuid.UUID) (*ParkingSpot, error) {
	spots, err := s.repo.FindFreeSpotsInGroup(ctx, groupID, date)
	if err != nil {
		return nil, err
	}
	for i := range spots {
		if spots[i].ID == excludeSpotID {
			continue
		}
		return &spots[i], nil
	}
	return nil, nil
}
