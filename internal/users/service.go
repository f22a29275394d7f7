package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service interface defines the contract for user operations consumed by
// other modules (waitlist ordering, incident plate matching)
type Service interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	// RolePriorities resolves the role priority rank for each given user.
	// Missing users get the lowest rank instead of failing the lookup.
	RolePriorities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
	// FindByLicensePlate returns (nil, nil) when no user matches the plate.
	FindByLicensePlate(ctx context.Context, plate string) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) RolePriorities(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	found, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	priorities := make(map[uuid.UUID]int, len(ids))
	for _, id := range ids {
		priorities[id] = RoleUser.Priority()
	}
	for _, u := range found {
		priorities[u.ID] = u.Role.Priority()
	}
	return priorities, nil
}

func (s *service) FindByLicensePlate(ctx context.Context, plate string) (*User, error) {
	if plate == "" {
		return nil, nil
	}
	user, err := s.repo.GetByLicensePlate(ctx, plate)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}
