package incidents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for incident data operations
type Repository interface {
	Create(ctx context.Context, incident *Incident) error
	GetByID(ctx context.Context, id uuid.UUID) (*Incident, error)
	Update(ctx context.Context, incident *Incident) error
	List(ctx context.Context, status IncidentStatus, since time.Time) ([]Incident, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]Incident, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new incident repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, incident *Incident) error {
	if incident.ID == uuid.Nil {
		incident.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(incident).Error; err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Incident, error) {
	var incident Incident
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&incident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to get incident: %w", err)
	}
	return &incident, nil
}

func (r *repository) Update(ctx context.Context, incident *Incident) error {
	if err := r.db.WithContext(ctx).Save(incident).Error; err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, status IncidentStatus, since time.Time) ([]Incident, error) {
	query := r.db.WithContext(ctx).Model(&Incident{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if !since.IsZero() {
		query = query.Where("created_at >= ?", since)
	}

	var incidents []Incident
	err := query.Order("created_at DESC").Find(&incidents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	return incidents, nil
}

func (r *repository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]Incident, error) {
	var incidents []Incident
	err := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").
		Find(&incidents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reporter incidents: %w", err)
	}
	return incidents, nil
}
