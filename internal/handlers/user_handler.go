package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	service services.UserService
}

func NewUserHandler(service services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetUsers returns one user or the user listing
// @Summary Get users
// @Description With ?id= or ?email= return a single user (self or admin);
// without either, list users (admin only).
// @Tags users
// @Produce json
// @Param id query string false "User ID"
// @Param email query string false "User email"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role (admin, client)"
// @Param limit query int false "Page size (default: 50)"
// @Param offset query int false "Offset (default: 0)"
// @Success 200 {object} interface{} "User or user list"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users [get]
func (h *UserHandler) GetUsers(c *gin.Context) {
	caller := GetUserFromContext(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if id := c.Query("id"); id != "" {
		user, err := h.service.GetByID(c.Request.Context(), id, caller)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}

	if email := c.Query("email"); email != "" {
		user, err := h.service.GetByEmail(c.Request.Context(), email, caller)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}

	users, total, err := h.service.List(c.Request.Context(), caller, h.parseUserFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
	})
}

// UpdateUser updates a user profile
// @Summary Update a user profile
// @Description Update name and avatar (self or admin)
// @Tags users
// @Accept json
// @Produce json
// @Param id query string true "User ID"
// @Param request body services.UpdateUserRequest true "Profile update request"
// @Success 200 {object} map[string]interface{} "Updated user"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /users [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller := GetUserFromContext(c)
	if caller == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	id := c.Query("id")
	if id == "" {
		id = caller.ID
	}

	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), id, &req, caller)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// ===== HELPERS =====

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  50,
		Offset: 0,
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 200 {
			filters.Limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
			filters.Offset = o
		}
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		if role == models.RoleAdmin || role == models.RoleClient {
			filters.Role = &role
		}
	}

	return filters
}
