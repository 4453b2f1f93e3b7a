package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) repositories.ConversationRepository {
	return &conversationRepository{db: db}
}

// ===== BASIC CRUD OPERATIONS =====

func (r *conversationRepository) Create(ctx context.Context, tx *gorm.DB, conversation *models.Conversation) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(conversation).Error; err != nil {
		return handleDBError(err, "create conversation")
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Conversation, error) {
	db := r.getDB(tx)
	var conversation models.Conversation

	if err := db.WithContext(ctx).
		Preload("Participants.User").
		Where("id = ?", id).
		First(&conversation).Error; err != nil {
		return nil, handleDBError(err, "get conversation by id")
	}

	return &conversation, nil
}

func (r *conversationRepository) GetByParticipantKey(ctx context.Context, tx *gorm.DB, key string) (*models.Conversation, error) {
	db := r.getDB(tx)
	var conversation models.Conversation

	if err := db.WithContext(ctx).
		Preload("Participants.User").
		Where("participant_key = ?", key).
		First(&conversation).Error; err != nil {
		return nil, handleDBError(err, "get conversation by participant key")
	}

	return &conversation, nil
}

func (r *conversationRepository) Update(ctx context.Context, tx *gorm.DB, conversation *models.Conversation) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(conversation).Error; err != nil {
		return handleDBError(err, "update conversation")
	}
	return nil
}

// ===== QUERY OPERATIONS =====

// ListByUser orders by the participant's joined_at descending, not by
// conversation recency. That is the documented inbox ordering.
func (r *conversationRepository) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Conversation, error) {
	db := r.getDB(tx)
	var conversations []*models.Conversation

	if err := db.WithContext(ctx).
		Table("conversations c").
		Select("c.*").
		Joins("INNER JOIN conversation_participants cp ON c.id = cp.conversation_id").
		Where("cp.user_id = ?", userID).
		Order("cp.joined_at DESC").
		Preload("Participants.User").
		Find(&conversations).Error; err != nil {
		return nil, handleDBError(err, "list conversations by user")
	}

	return conversations, nil
}

// ===== PARTICIPANT OPERATIONS =====

func (r *conversationRepository) AddParticipants(ctx context.Context, tx *gorm.DB, participants []models.ConversationParticipant) error {
	if len(participants) == 0 {
		return nil
	}

	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&participants).Error; err != nil {
		return handleDBError(err, "add conversation participants")
	}
	return nil
}

func (r *conversationRepository) IsParticipant(ctx context.Context, tx *gorm.DB, conversationID, userID string) (bool, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check conversation participancy")
	}

	return count > 0, nil
}

func (r *conversationRepository) Touch(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", at).Error; err != nil {
		return handleDBError(err, "touch conversation")
	}
	return nil
}

// ===== HELPER METHODS =====

func (r *conversationRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
