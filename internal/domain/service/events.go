package service

import (
	"context"

	"github.com/google/uuid"

	"habitflow/internal/domain/entity"
)

// EventPublisher publishes engine milestones for downstream consumers
// (notifications, analytics). Publishing is best-effort: callers log failures
// and continue.
type EventPublisher interface {
	// PublishXPGranted publishes a successful XP grant
	PublishXPGranted(ctx context.Context, grant *entity.XPGrant) error

	// PublishStreakMilestone publishes a habit reaching a streak milestone
	PublishStreakMilestone(ctx context.Context, userID, habitID uuid.UUID, streak int) error
}
