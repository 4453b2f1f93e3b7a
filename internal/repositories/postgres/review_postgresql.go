package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) repositories.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(review).Error; err != nil {
		return handleDBError(err, "create review")
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.ReviewFilters) ([]*models.Review, int64, error) {
	db := r.getDB(tx)
	var reviews []*models.Review
	var total int64

	query := db.WithContext(ctx).Model(&models.Review{})

	if filters.VerifiedOnly {
		query = query.Where("verified = true")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count reviews")
	}

	query = applyPagination(query.Order("created_at DESC"), filters.Limit, filters.Offset)

	if err := query.Find(&reviews).Error; err != nil {
		return nil, 0, handleDBError(err, "list reviews")
	}

	return reviews, total, nil
}

func (r *reviewRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}
