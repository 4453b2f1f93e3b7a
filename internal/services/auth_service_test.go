package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/TutorHub-2025/messaging-service/internal/events"
	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/validator"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAuthFixture(t *testing.T) (AuthService, *mockRepository, *events.MockEventPublisher) {
	t.Helper()

	logger := testLogger()
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	eventService := NewEventService(publisher, logger)

	svc := NewAuthService(repo, logger, validator.New(), nil, eventService, AdminBootstrap{
		Email:    "tutor@example.com",
		Name:     "Tutor",
		Password: "bootstrap-secret",
	})

	return svc, repo, publisher
}

func TestRegister(t *testing.T) {
	svc, _, publisher := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "password1",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if result.User.ID == "" {
		t.Error("Expected user id to be assigned")
	}
	if result.User.Role != models.RoleClient {
		t.Errorf("Expected default role %q, got %q", models.RoleClient, result.User.Role)
	}
	if result.Token == "" {
		t.Error("Expected a session token")
	}
	if !result.ExpiresAt.After(time.Now().Add(29 * 24 * time.Hour)) {
		t.Errorf("Expected ~30 day session lifetime, got expiry %v", result.ExpiresAt)
	}
	if result.User.PasswordHash == "password1" {
		t.Error("Password must not be stored in the clear")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.EventUserRegistered {
		t.Errorf("Expected one %s event, got %v", events.EventUserRegistered, published)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	req := &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "password1"}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("First register failed: %v", err)
	}

	_, err := svc.Register(ctx, &RegisterRequest{Email: "alice@example.com", Name: "Other Alice", Password: "password2"})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("Expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *RegisterRequest
	}{
		{"missing email", &RegisterRequest{Name: "Alice", Password: "password1"}},
		{"invalid email", &RegisterRequest{Email: "not-an-email", Name: "Alice", Password: "password1"}},
		{"short password", &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "abc"}},
		{"bad role", &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "password1", Role: "superuser"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.req)
			if err == nil {
				t.Error("Expected validation error")
			}
			if !validator.IsValidationError(err) {
				t.Errorf("Expected validation error type, got %v", err)
			}
		})
	}
}

func TestLoginInvalidCredentialsIndistinguishable(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "password1"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Unknown email and wrong password must yield the same error
	_, unknownErr := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "password1"})
	_, wrongErr := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong-password"})

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("Credential errors must be indistinguishable: %q vs %q", unknownErr, wrongErr)
	}
}

func TestLoginUpdatesLastLogin(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := svc.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if result.User.LastLogin == nil {
		t.Error("Expected last login to be set")
	}

	stored, err := repo.User().GetByID(ctx, nil, registered.User.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.LastLogin == nil {
		t.Error("Expected persisted last login")
	}
}

func TestValidateSession(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, session, err := svc.ValidateSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if user == nil || session == nil {
		t.Fatal("Expected a valid session")
	}
	if user.ID != result.User.ID {
		t.Errorf("Expected user %s, got %s", result.User.ID, user.ID)
	}
}

func TestValidateSessionAnonymous(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
		setup func(t *testing.T) string
	}{
		{"empty token", "", nil},
		{"unknown token", "deadbeef", nil},
		{
			"expired session",
			"",
			func(t *testing.T) string {
				result, err := svc.Register(ctx, &RegisterRequest{Email: "bob@example.com", Name: "Bob", Password: "password1"})
				if err != nil {
					t.Fatalf("Register failed: %v", err)
				}
				repo.mu.Lock()
				repo.sessions[result.Token].ExpiresAt = time.Now().Add(-time.Minute)
				repo.mu.Unlock()
				return result.Token
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := tt.token
			if tt.setup != nil {
				token = tt.setup(t)
			}

			user, session, err := svc.ValidateSession(ctx, token)
			if err != nil {
				t.Fatalf("ValidateSession returned error: %v", err)
			}
			if user != nil || session != nil {
				t.Error("Expected anonymous result")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	user, _, err := svc.ValidateSession(ctx, result.Token)
	if err != nil {
		t.Fatalf("ValidateSession failed: %v", err)
	}
	if user != nil {
		t.Error("Expected session to be gone after logout")
	}

	// Logging out twice is not an error
	if err := svc.Logout(ctx, result.Token); err != nil {
		t.Errorf("Repeated logout failed: %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	svc, repo, _ := newAuthFixture(t)
	ctx := context.Background()

	alice, err := svc.Register(ctx, &RegisterRequest{Email: "alice@example.com", Name: "Alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	bob, err := svc.Register(ctx, &RegisterRequest{Email: "bob@example.com", Name: "Bob", Password: "password1"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	repo.mu.Lock()
	repo.sessions[bob.Token].ExpiresAt = time.Now().Add(-time.Hour)
	repo.mu.Unlock()

	deleted, err := svc.CleanupExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted session, got %d", deleted)
	}

	if user, _, _ := svc.ValidateSession(ctx, alice.Token); user == nil {
		t.Error("Live session must survive cleanup")
	}
}

func TestEnsureAdmin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	admin, err := svc.EnsureAdmin(ctx)
	if err != nil {
		t.Fatalf("EnsureAdmin failed: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("Expected admin role, got %q", admin.Role)
	}
	if !admin.IsVerified {
		t.Error("Expected bootstrapped admin to be verified")
	}

	// Idempotent: second call returns the same account
	again, err := svc.EnsureAdmin(ctx)
	if err != nil {
		t.Fatalf("Second EnsureAdmin failed: %v", err)
	}
	if again.ID != admin.ID {
		t.Errorf("Expected same admin %s, got %s", admin.ID, again.ID)
	}

	// The admin can log in with the bootstrap password
	if _, err := svc.Login(ctx, &LoginRequest{Email: "tutor@example.com", Password: "bootstrap-secret"}); err != nil {
		t.Errorf("Admin login failed: %v", err)
	}
}

func TestEnsureAdminWithoutPassword(t *testing.T) {
	logger := testLogger()
	repo := newMockRepository()
	eventService := NewEventService(events.NewMockEventPublisher(logger), logger)

	svc := NewAuthService(repo, logger, validator.New(), nil, eventService, AdminBootstrap{
		Email: "tutor@example.com",
		Name:  "Tutor",
	})

	_, err := svc.EnsureAdmin(context.Background())
	if !errors.Is(err, ErrAdminNotConfigured) {
		t.Errorf("Expected ErrAdminNotConfigured, got %v", err)
	}
}
