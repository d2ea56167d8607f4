package services

import (
	"context"
	"fmt"

	"github.com/todoflow/core/internal/domain/entities"
	"github.com/todoflow/core/internal/infrastructure/logger"
	"github.com/todoflow/core/internal/ports"
)

// UserService handles the user lifecycle. Users are created or refreshed
// on the authentication callback and never deleted here.
type UserService struct {
	userRepo ports.UserRepository
	logger   *logger.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo ports.UserRepository, logger *logger.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		logger:   logger,
	}
}

// UpsertFromIdentity creates or refreshes the user record from the
// identity provider's callback payload.
func (s *UserService) UpsertFromIdentity(ctx context.Context, req ports.IdentityProfile) (*entities.User, error) {
	user := &entities.User{
		ID:                req.ID,
		Email:             req.Email,
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		EmailVerified:     req.EmailVerified,
		ProfilePictureURL: req.ProfilePictureURL,
		OrganizationID:    req.OrganizationID,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	s.logger.Infow("User upserted from identity callback", "user_id", user.ID)

	return user, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id string) (*entities.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if err == entities.ErrUserNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
