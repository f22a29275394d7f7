package parking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for parking inventory operations
type Repository interface {
	GetSpot(ctx context.Context, id uuid.UUID) (*ParkingSpot, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*ParkingGroup, error)
	ListGroups(ctx context.Context) ([]ParkingGroup, error)
	ListSpotsByGroup(ctx context.Context, groupID uuid.UUID) ([]ParkingSpot, error)
	// FindFreeSpotsInGroup returns active spots in the group with no confirmed
	// reservation on the given date, ordered by spot number.
	FindFreeSpotsInGroup(ctx context.Context, groupID uuid.UUID, date time.Time) ([]ParkingSpot, error)
	CreateGroup(ctx context.Context, group *ParkingGroup) error
	CreateSpot(ctx context.Context, spot *ParkingSpot) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetSpot(ctx context.Context, id uuid.UUID) (*ParkingSpot, error) {
	var spot ParkingSpot
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&spot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpotNotFound
		}
		return nil, fmt.Errorf("failed to get parking spot: %w", err)
	}
	return &spot, nil
}

func (r *repository) GetGroup(ctx context.Context, id uuid.UUID) (*ParkingGroup, error) {
	var group ParkingGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get parking group: %w", err)
	}
	return &group, nil
}

func (r *repository) ListGroups(ctx context.Context) ([]ParkingGroup, error) {
	var groups []ParkingGroup
	err := r.db.WithContext(ctx).Order("priority ASC, name ASC").Find(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list parking groups: %w", err)
	}
	return groups, nil
}

func (r *repository) ListSpotsByGroup(ctx context.Context, groupID uuid.UUID) ([]ParkingSpot, error) {
	var spots []ParkingSpot
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("number ASC").
		Find(&spots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list parking spots: %w", err)
	}
	return spots, nil
}

func (r *repository) FindFreeSpotsInGroup(ctx context.Context, groupID uuid.UUID, date time.Time) ([]ParkingSpot, error) {
	var spots []ParkingSpot
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND active = ?", groupID, true).
		Where(`NOT EXISTS (
			SELECT 1 FROM reservations
			WHERE reservations.spot_id = parking_spots.id
			AND reservations.reservation_date = ?
			AND reservations.status = 'CONFIRMED')`, date).
		Order("number ASC").
		Find(&spots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find free spots: %w", err)
	}
	return spots, nil
}

func (r *repository) CreateGroup(ctx context.Context, group *ParkingGroup) error {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	group.CreatedAt = time.Now()
	group.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		return fmt.Errorf("failed to create parking group: %w", err)
	}
	return nil
}

func (r *repository) CreateSpot(ctx context.Context, spot *ParkingSpot) error {
	if spot.ID == uuid.Nil {
		spot.ID = uuid.New()
	}
	spot.CreatedAt = time.Now()
	spot.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(spot).Error; err != nil {
		return fmt.Errorf("failed to create parking spot: %w", err)
	}
	return nil
}
