package http

import (
	"context"

	"github.com/google/uuid"

	"habitflow/internal/domain/service"
)

// ContextSessionResolver resolves the authenticated user from the request
// context populated by AuthMiddleware.
type ContextSessionResolver struct{}

// NewContextSessionResolver creates a new context session resolver
func NewContextSessionResolver() service.SessionResolver {
	return &ContextSessionResolver{}
}

func (ContextSessionResolver) CurrentUserID(ctx context.Context) (uuid.UUID, error) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, service.ErrUnauthenticated
	}
	return userID, nil
}
