package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) repositories.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(message).Error; err != nil {
		return handleDBError(err, "create message")
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Message, error) {
	db := r.getDB(tx)
	var message models.Message

	if err := db.WithContext(ctx).
		Preload("Sender").
		Where("id = ?", id).
		First(&message).Error; err != nil {
		return nil, handleDBError(err, "get message by id")
	}

	return &message, nil
}

// ListByConversation pages newest-first; the service layer reverses the page
// to chronological order before returning it to callers.
func (r *messageRepository) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID string, filters repositories.MessageFilters) ([]*models.Message, error) {
	db := r.getDB(tx)
	var messages []*models.Message

	query := db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC")

	query = applyPagination(query, filters.Limit, filters.Offset)

	if err := query.Find(&messages).Error; err != nil {
		return nil, handleDBError(err, "list messages by conversation")
	}

	return messages, nil
}

// MarkRead is idempotent under concurrency: conflicting inserts for the same
// (message, user) pair are skipped, not errors.
func (r *messageRepository) MarkRead(ctx context.Context, tx *gorm.DB, reads []models.MessageRead) error {
	if len(reads) == 0 {
		return nil
	}

	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&reads).Error; err != nil {
		return handleDBError(err, "mark messages read")
	}
	return nil
}

func (r *messageRepository) CountReads(ctx context.Context, tx *gorm.DB, messageID string) (int64, error) {
	db := r.getDB(tx)
	var count int64

	if err := db.WithContext(ctx).
		Model(&models.MessageRead{}).
		Where("message_id = ?", messageID).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count message reads")
	}

	return count, nil
}

func (r *messageRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
