package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
	"github.com/TutorHub-2025/messaging-service/internal/validator"
)

type reviewService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewReviewService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) ReviewService {
	return &reviewService{
		repo:      repo,
		logger:    logger,
		validator: v,
	}
}

// Submit stores a testimonial; it starts unverified and only appears in
// verified listings after manual approval.
func (s *reviewService) Submit(ctx context.Context, req *SubmitReviewRequest) (*models.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	review := &models.Review{
		Name:     req.Name,
		Email:    req.Email,
		Role:     req.Role,
		Subject:  req.Subject,
		Rating:   req.Rating,
		Review:   req.Review,
		Verified: false,
		PhotoURL: req.PhotoURL,
	}

	if err := s.repo.Review().Create(ctx, nil, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("Review submitted", "review_id", review.ID, "rating", review.Rating)

	return review, nil
}

func (s *reviewService) List(ctx context.Context, filters repositories.ReviewFilters) ([]*models.Review, int64, error) {
	reviews, total, err := s.repo.Review().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	return reviews, total, nil
}
