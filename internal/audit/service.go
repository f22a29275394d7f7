package audit

import (
	"context"
	"log/slog"

	"parkwise/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for recording audit events.
// Recording is best-effort: a failed write is logged and never propagated to
// the state transition that produced the event.
type Service interface {
	Record(ctx context.Context, entry *AuditLog)
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
}

type service struct {
	repo Repository
	log  *logger.Logger
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
		log:  logger.GetDefault(),
	}
}

func (s *service) Record(ctx context.Context, entry *AuditLog) {
	if err := s.repo.Create(ctx, entry); err != nil {
		s.log.ErrorContext(ctx, "audit write failed",
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
	}
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]AuditLog, error) {
	return s.repo.List(ctx, filter)
}

// Event builds an audit entry for the common subject/actor shape
func Event(action string, userID, actorID, entityID uuid.UUID, entityType string, details JSONMap) *AuditLog {
	entry := &AuditLog{
		Action:     action,
		EntityType: entityType,
		Details:    details,
	}
	if userID != uuid.Nil {
		entry.UserID = &userID
	}
	if actorID != uuid.Nil {
		entry.ActorID = &actorID
	}
	if entityID != uuid.Nil {
		entry.EntityID = &entityID
	}
	return entry
}
