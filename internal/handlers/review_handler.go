package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/repositories"
	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
)

type ReviewHandler struct {
	BaseHandler
	service services.ReviewService
}

func NewReviewHandler(service services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListReviews returns the public review listing
// @Summary List reviews
// @Description Get reviews, newest first, optionally verified only
// @Tags reviews
// @Produce json
// @Param verified query bool false "Only verified reviews"
// @Param limit query int false "Page size (default: 20)"
// @Param offset query int false "Offset (default: 0)"
// @Success 200 {object} map[string]interface{} "Review list"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	filters := repositories.ReviewFilters{
		VerifiedOnly: c.Query("verified") == "true",
		Limit:        20,
		Offset:       0,
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			filters.Limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
			filters.Offset = o
		}
	}

	reviews, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"total":   total,
	})
}

// SubmitReview accepts a public review submission
// @Summary Submit a review
// @Description Submit a review; it stays unverified until approved
// @Tags reviews
// @Accept json
// @Produce json
// @Param request body services.SubmitReviewRequest true "Review submission"
// @Success 201 {object} models.Review
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /submit-review [post]
func (h *ReviewHandler) SubmitReview(c *gin.Context) {
	var req services.SubmitReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	review, err := h.service.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}
