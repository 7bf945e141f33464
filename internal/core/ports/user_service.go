package ports

import (
	"context"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
)

// Actor is the authenticated caller of a user operation, nil when the
// request carried no valid token.
type Actor struct {
	ID   int64
	Role domain.Role
}

// UpdateUserInput carries a partial update for the user with ID.
type UpdateUserInput struct {
	ID     int64
	Update domain.UserUpdate
	Actor  *Actor
}

// DeleteUserInput identifies the user to remove.
type DeleteUserInput struct {
	ID    int64
	Actor *Actor
}

type UserService interface {
	List(ctx context.Context) ([]*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, in UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, in DeleteUserInput) (*domain.User, error)
}
