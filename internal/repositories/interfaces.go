package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TutorHub-2025/messaging-service/internal/models"
)

// All repository methods accept an optional *gorm.DB transaction handle; nil
// means "use the repository's own connection".

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB, filters UserFilters) ([]*models.User, int64, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error
	ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error)
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.Session) error
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error)
	DeleteByToken(ctx context.Context, tx *gorm.DB, token string) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID string) error
	DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error)
}

type ConversationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, conversation *models.Conversation) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Conversation, error)
	GetByParticipantKey(ctx context.Context, tx *gorm.DB, key string) (*models.Conversation, error)
	Update(ctx context.Context, tx *gorm.DB, conversation *models.Conversation) error

	// ListByUser returns conversations the user participates in, ordered by
	// the participant's joined_at descending.
	ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Conversation, error)

	AddParticipants(ctx context.Context, tx *gorm.DB, participants []models.ConversationParticipant) error
	IsParticipant(ctx context.Context, tx *gorm.DB, conversationID, userID string) (bool, error)

	// Touch bumps the conversation's updated_at for inbox ordering.
	Touch(ctx context.Context, tx *gorm.DB, id string, at time.Time) error
}

type MessageRepository interface {
	Create(ctx context.Context, tx *gorm.DB, message *models.Message) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Message, error)

	// ListByConversation returns a newest-first page of messages with the
	// sender preloaded.
	ListByConversation(ctx context.Context, tx *gorm.DB, conversationID string, filters MessageFilters) ([]*models.Message, error)

	// MarkRead inserts read receipts, skipping rows that already exist.
	MarkRead(ctx context.Context, tx *gorm.DB, reads []models.MessageRead) error
	CountReads(ctx context.Context, tx *gorm.DB, messageID string) (int64, error)
}

type ReviewRepository interface {
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error
	List(ctx context.Context, tx *gorm.DB, filters ReviewFilters) ([]*models.Review, int64, error)
}

// ===== SHARED FILTER STRUCTS =====

type UserFilters struct {
	Query  string           `json:"query"`
	Role   *models.UserRole `json:"role"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type MessageFilters struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

type ReviewFilters struct {
	VerifiedOnly bool `json:"verified_only"`
	Limit        int  `json:"limit"`
	Offset       int  `json:"offset"`
}
