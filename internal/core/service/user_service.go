package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

// UserService implements listing, lookup, partial update and removal of
// user records.
//
// When enforceAuthz is set, updates are restricted to the account owner or
// an admin (only admins may change roles) and deletes to admins acting on
// another account. When it is unset the endpoints are open.
type UserService struct {
	repo         ports.UserRepository
	enforceAuthz bool
	log          zerolog.Logger
}

func NewUserService(repo ports.UserRepository, enforceAuthz bool, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, enforceAuthz: enforceAuthz, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Update applies a partial update. A changed email is re-checked for
// uniqueness; a duplicate-key failure from the store maps to the same
// domain.ErrEmailInUse.
func (s *UserService) Update(ctx context.Context, in ports.UpdateUserInput) (*domain.User, error) {
	if in.Update.Empty() {
		return nil, domain.NewValidationError("", "At least one field must be provided for update")
	}
	if err := s.authorizeUpdate(in); err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.Update.Email != nil && *in.Update.Email != existing.Email {
		_, err := s.repo.FindByEmail(ctx, *in.Update.Email)
		switch {
		case err == nil:
			return nil, domain.ErrEmailInUse
		case !errors.Is(err, domain.ErrUserNotFound):
			return nil, fmt.Errorf("update user %d: lookup email: %w", in.ID, err)
		}
	}

	updated, err := s.repo.Update(ctx, in.ID, in.Update)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailExists):
			return nil, domain.ErrEmailInUse
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user %d: %w", in.ID, err)
	}

	s.log.Info().Int64("user_id", in.ID).Msg("user updated")
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, in ports.DeleteUserInput) (*domain.User, error) {
	if err := s.authorizeDelete(in); err != nil {
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("delete user %d: %w", in.ID, err)
	}

	s.log.Info().Int64("user_id", in.ID).Msg("user deleted")
	return deleted, nil
}

func (s *UserService) authorizeUpdate(in ports.UpdateUserInput) error {
	if !s.enforceAuthz {
		return nil
	}
	if in.Actor == nil {
		return domain.ErrUnauthenticated
	}
	isAdmin := in.Actor.Role == domain.RoleAdmin
	if !isAdmin && in.Actor.ID != in.ID {
		return domain.ErrNotOwner
	}
	if in.Update.Role != nil && !isAdmin {
		return domain.ErrRoleChange
	}
	return nil
}

func (s *UserService) authorizeDelete(in ports.DeleteUserInput) error {
	if !s.enforceAuthz {
		return nil
	}
	if in.Actor == nil {
		return domain.ErrUnauthenticated
	}
	if in.Actor.Role != domain.RoleAdmin {
		return domain.ErrAdminOnly
	}
	if in.Actor.ID == in.ID {
		return domain.ErrSelfDelete
	}
	return nil
}
