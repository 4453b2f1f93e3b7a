package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) repositories.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return handleDBError(err, "create session")
	}
	return nil
}

func (r *sessionRepository) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error) {
	db := r.getDB(tx)
	var session models.Session

	if err := db.WithContext(ctx).
		Preload("User").
		Where("token = ?", token).
		First(&session).Error; err != nil {
		return nil, handleDBError(err, "get session by token")
	}

	return &session, nil
}

// DeleteByToken removes a session. Deleting a token that does not exist is
// not an error (logout is idempotent).
func (r *sessionRepository) DeleteByToken(ctx context.Context, tx *gorm.DB, token string) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("token = ?", token).
		Delete(&models.Session{}).Error; err != nil {
		return handleDBError(err, "delete session by token")
	}
	return nil
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, tx *gorm.DB, userID string) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Session{}).Error; err != nil {
		return handleDBError(err, "delete sessions by user")
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	db := r.getDB(tx)
	result := db.WithContext(ctx).
		Where("expires_at <= ?", before).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, handleDBError(result.Error, "delete expired sessions")
	}
	return result.RowsAffected, nil
}

func (r *sessionRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
