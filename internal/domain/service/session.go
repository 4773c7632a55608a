package service

import (
	"context"

	"github.com/google/uuid"
)

// SessionResolver yields the authenticated user for the current request
// context. Implementations fail with ErrUnauthenticated when no valid
// session identity is present.
type SessionResolver interface {
	CurrentUserID(ctx context.Context) (uuid.UUID, error)
}
