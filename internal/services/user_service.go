package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TutorHub-2025/messaging-service/internal/auth"
	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
	"github.com/TutorHub-2025/messaging-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

func (s *userService) GetByID(ctx context.Context, id string, caller *models.User) (*models.User, error) {
	if !auth.CanViewUser(caller, id) {
		return nil, NewPermissionError(caller.ID, id, "user", "read", "may only fetch own record")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string, caller *models.User) (*models.User, error) {
	user, err := s.repo.User().GetByEmail(ctx, nil, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !auth.CanViewUser(caller, user.ID) {
		return nil, NewPermissionError(caller.ID, user.ID, "user", "read", "may only fetch own record")
	}

	return user, nil
}

func (s *userService) List(ctx context.Context, caller *models.User, filters repositories.UserFilters) ([]*models.User, int64, error) {
	if !auth.IsAdmin(caller) {
		return nil, 0, NewPermissionError(caller.ID, "", "user", "list", "admin only")
	}

	users, total, err := s.repo.User().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	return users, total, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, req *UpdateUserRequest, caller *models.User) (*models.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if !auth.CanViewUser(caller, id) {
		return nil, NewPermissionError(caller.ID, id, "user", "update", "may only update own record")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User profile updated", "user_id", id, "caller_id", caller.ID)

	return user, nil
}
