package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	service services.AuthService
	session *SessionAuthMiddleware
}

func NewAuthHandler(service services.AuthService, session *SessionAuthMiddleware, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		session:     session,
	}
}

// Register creates a new user account and opens a session
// @Summary Register a new user
// @Description Create a user account and set the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.RegisterRequest true "Registration request"
// @Success 201 {object} map[string]interface{} "Created user"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 409 {object} ErrorResponse "Conflict - email already registered"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.session.SetSessionCookie(c, result.Token)

	c.JSON(http.StatusCreated, gin.H{
		"user":    result.User,
		"message": "Registration successful",
	})
}

// Login authenticates a user and opens a session
// @Summary Log in
// @Description Verify credentials and set the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body services.LoginRequest true "Login request"
// @Success 200 {object} map[string]interface{} "Authenticated user"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.session.SetSessionCookie(c, result.Token)

	c.JSON(http.StatusOK, gin.H{
		"user":    result.User,
		"message": "Login successful",
	})
}

// Logout ends the current session
// @Summary Log out
// @Description Delete the session and clear the cookie. Always clears the
// cookie and returns 200, even when the session delete fails.
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token, err := c.Cookie(SessionCookieName)
	if err == nil && token != "" {
		if err := h.service.Logout(c.Request.Context(), token); err != nil {
			// The client still loses its cookie; the stale row is swept later
			h.LogError(c, err, "Failed to delete session on logout")
		}
	}

	h.session.ClearSessionCookie(c)

	c.JSON(http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Logged out",
	})
}

// Me returns the authenticated user
// @Summary Get the current user
// @Description Return the user bound to the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Current user"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SetupAdmin bootstraps the configured admin account
// @Summary Set up the admin account
// @Description Create the configured admin account if it does not exist; idempotent
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]interface{} "Admin account"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /setup-admin [post]
func (h *AuthHandler) SetupAdmin(c *gin.Context) {
	admin, err := h.service.EnsureAdmin(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    admin,
		"message": "Admin account ready",
	})
}
