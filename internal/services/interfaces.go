package services

import (
	"context"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

// ===== REQUEST / RESPONSE DTOS =====

type RegisterRequest struct {
	Email    string          `json:"email" validate:"required,email,max=255"`
	Name     string          `json:"name" validate:"required,min=1,max=100"`
	Password string          `json:"password" validate:"required,min=6,max=128"`
	Role     models.UserRole `json:"role" validate:"omitempty,user_role"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by Register and Login; Token is the raw bearer
// credential to be set as the session cookie.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"-"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type CreateConversationRequest struct {
	ParticipantIDs []string                `json:"participantIds" validate:"required,min=1,dive,required"`
	Type           models.ConversationType `json:"type" validate:"omitempty,conversation_type"`
	Name           *string                 `json:"name" validate:"omitempty,max=255"`
}

type UpdateConversationRequest struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=255"`
}

type SendMessageRequest struct {
	ConversationID string             `json:"conversationId" validate:"required"`
	Content        string             `json:"content" validate:"required"`
	MessageType    models.MessageType `json:"messageType" validate:"omitempty,message_type"`
	Metadata       *string            `json:"metadata"`
}

type UpdateUserRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=500"`
}

type SubmitReviewRequest struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Role     string  `json:"role" validate:"omitempty,max=100"`
	Subject  string  `json:"subject" validate:"omitempty,max=100"`
	Rating   int     `json:"rating" validate:"required,min=1,max=5"`
	Review   string  `json:"review" validate:"required,min=1"`
	PhotoURL *string `json:"photo_url" validate:"omitempty,max=500"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)

	// ValidateSession returns (nil, nil, nil) for absent or expired tokens;
	// callers treat that as anonymous, not as an error.
	ValidateSession(ctx context.Context, token string) (*models.User, *models.Session, error)

	// Logout is idempotent; deleting an unknown token is not an error.
	Logout(ctx context.Context, token string) error

	CleanupExpiredSessions(ctx context.Context) (int64, error)

	// EnsureAdmin creates the configured admin account if it does not exist.
	EnsureAdmin(ctx context.Context) (*models.User, error)
}

type MessagingService interface {
	CreateConversation(ctx context.Context, req *CreateConversationRequest, creator *models.User) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string, caller *models.User) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error)
	UpdateConversation(ctx context.Context, id string, req *UpdateConversationRequest, caller *models.User) (*models.Conversation, error)

	SendMessage(ctx context.Context, req *SendMessageRequest, sender *models.User) (*models.Message, error)

	// ListMessages returns the page in chronological order and, as a side
	// effect, marks the returned messages read for the caller (excluding the
	// caller's own messages).
	ListMessages(ctx context.Context, conversationID string, caller *models.User, limit, offset int) ([]*models.Message, error)

	MarkMessageRead(ctx context.Context, messageID, userID string) error

	StartConsultation(ctx context.Context, client *models.User) (*models.Conversation, error)
}

type UserService interface {
	GetByID(ctx context.Context, id string, caller *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string, caller *models.User) (*models.User, error)
	List(ctx context.Context, caller *models.User, filters repositories.UserFilters) ([]*models.User, int64, error)
	UpdateProfile(ctx context.Context, id string, req *UpdateUserRequest, caller *models.User) (*models.User, error)
}

type ReviewService interface {
	Submit(ctx context.Context, req *SubmitReviewRequest) (*models.Review, error)
	List(ctx context.Context, filters repositories.ReviewFilters) ([]*models.Review, int64, error)
}

// EventService publishes domain events fire-and-forget: failures are logged,
// never propagated to the triggering operation.
type EventService interface {
	UserRegistered(ctx context.Context, user *models.User)
	ConversationCreated(ctx context.Context, conversation *models.Conversation, creatorID string)
	ConsultationStarted(ctx context.Context, conversation *models.Conversation, clientID, consultantID string, existing bool)
	MessageSent(ctx context.Context, message *models.Message)
}

type ExportService interface {
	ExportConversationMessages(ctx context.Context, conversationID string, caller *models.User) (*excelize.File, error)
	ExportReviews(ctx context.Context, caller *models.User) (*excelize.File, error)
}

// ServiceManager owns service lifecycle and wiring
type ServiceManager interface {
	Auth() AuthService
	Messaging() MessagingService
	Users() UserService
	Reviews() ReviewService
	Events() EventService
	Export() ExportService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
