package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TutorHub-2025/messaging-service/internal/auth"
	"github.com/TutorHub-2025/messaging-service/internal/cache"
	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
	"github.com/TutorHub-2025/messaging-service/internal/validator"
)

// sessionLifetime is fixed: no sliding-window extension on validation.
const sessionLifetime = 30 * 24 * time.Hour

// AdminBootstrap holds the configured sole-admin (tutor) account.
type AdminBootstrap struct {
	Email    string
	Name     string
	Password string
}

type authService struct {
	repo         repositories.Repository
	logger       *slog.Logger
	validator    *validator.Validator
	sessionCache *cache.SessionCache
	events       EventService
	admin        AdminBootstrap
}

func NewAuthService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, sessionCache *cache.SessionCache, events EventService, admin AdminBootstrap) AuthService {
	return &authService{
		repo:         repo,
		logger:       logger,
		validator:    v,
		sessionCache: sessionCache,
		events:       events,
		admin:        admin,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleClient
	}

	exists, err := s.repo.User().ExistsByEmail(ctx, nil, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         role,
		PasswordHash: hash,
		IsVerified:   false,
	}

	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		// Two concurrent registrations can pass the exists check; the unique
		// index catches the loser.
		if repositories.IsDuplicateError(err) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)
	s.events.UserRegistered(ctx, user)

	return s.issueSession(ctx, user)
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Unknown email and wrong password must be indistinguishable
	user, err := s.repo.User().GetByEmail(ctx, nil, req.Email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	if err := s.repo.User().UpdateLastLogin(ctx, nil, user.ID, now); err != nil {
		return nil, fmt.Errorf("failed to update last login: %w", err)
	}
	user.LastLogin = &now

	s.logger.Info("User logged in", "user_id", user.ID)

	return s.issueSession(ctx, user)
}

func (s *authService) issueSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(sessionLifetime),
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authService) ValidateSession(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, nil
	}

	// Cache first; any cache failure degrades to a store lookup
	if s.sessionCache != nil {
		session, user, err := s.sessionCache.Get(ctx, token)
		if err == nil {
			if session.IsExpired(time.Now()) {
				return nil, nil, nil
			}
			return user, session, nil
		}
		if !cache.IsMiss(err) {
			s.logger.Warn("Session cache lookup failed", "error", err)
		}
	}

	session, err := s.repo.Session().GetByToken(ctx, nil, token)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if session.IsExpired(time.Now()) {
		return nil, nil, nil
	}

	user := session.User
	if user == nil {
		// Session row without its user (cascade in flight); treat as invalid
		return nil, nil, nil
	}

	if s.sessionCache != nil {
		if err := s.sessionCache.Set(ctx, session, user); err != nil {
			s.logger.Warn("Session cache store failed", "error", err)
		}
	}

	return user, session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if s.sessionCache != nil {
		if err := s.sessionCache.Invalidate(ctx, token); err != nil {
			s.logger.Warn("Session cache invalidation failed", "error", err)
		}
	}

	if err := s.repo.Session().DeleteByToken(ctx, nil, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (s *authService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	deleted, err := s.repo.Session().DeleteExpired(ctx, nil, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("Expired sessions cleaned up", "deleted", deleted)
	}

	return deleted, nil
}

// EnsureAdmin is the idempotent admin bootstrap: it creates the configured
// tutor account on first run and is a no-op afterwards.
func (s *authService) EnsureAdmin(ctx context.Context) (*models.User, error) {
	existing, err := s.repo.User().GetByEmail(ctx, nil, s.admin.Email)
	if err == nil {
		return existing, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if s.admin.Password == "" {
		return nil, ErrAdminNotConfigured
	}

	hash, err := auth.HashPassword(s.admin.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Name:         s.admin.Name,
		Email:        s.admin.Email,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		IsVerified:   true,
	}

	if err := s.repo.User().Create(ctx, nil, admin); err != nil {
		if repositories.IsDuplicateError(err) {
			// Concurrent bootstrap; re-read the winner
			return s.repo.User().GetByEmail(ctx, nil, s.admin.Email)
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Info("Admin account bootstrapped", "admin_id", admin.ID)

	return admin, nil
}
