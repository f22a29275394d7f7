package notifications

import (
	"context"
	"log/slog"

	"parkwise/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the fire-and-forget notification sink consumed by
// the waitlist, reservation and incident modules. Failures are logged, never
// returned: a notification must not fail the state transition that emitted it.
type Service interface {
	Notify(ctx context.Context, t NotificationType, userID uuid.UUID, data map[string]interface{})
}

type service struct {
	producer Producer
	log      *logger.Logger
}

// NewService creates the notification service. A nil producer degrades to
// log-only mode so the application stays usable without a Kafka cluster.
func NewService(producer Producer) Service {
	return &service{
		producer: producer,
		log:      logger.GetDefault(),
	}
}

func (s *service) Notify(ctx context.Context, t NotificationType, userID uuid.UUID, data map[string]interface{}) {
	notification := NewNotification(t, userID, data)

	if s.producer == nil {
		s.log.InfoContext(ctx, "notification (no producer configured)",
			slog.String("type", string(t)),
			slog.String("user_id", userID.String()),
		)
		return
	}

	if err := s.producer.Publish(ctx, notification); err != nil {
		s.log.ErrorContext(ctx, "notification publish failed",
			slog.String("type", string(t)),
			slog.String("user_id", userID.String()),
			slog.Any("error", err),
		)
	}
}
