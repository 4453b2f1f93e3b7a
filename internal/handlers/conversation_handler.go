package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
)

type ConversationHandler struct {
	BaseHandler
	service services.MessagingService
}

func NewConversationHandler(service services.MessagingService, logger utils.Logger) *ConversationHandler {
	return &ConversationHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// CreateConversation creates a conversation or returns the existing private pair
// @Summary Create a conversation
// @Description Create a conversation with the given participants. A private
// two-party conversation that already exists is returned instead of duplicated.
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body services.CreateConversationRequest true "Conversation creation request"
// @Success 201 {object} models.Conversation
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Unknown participant"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /conversations [post]
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req services.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	conversation, err := h.service.CreateConversation(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

// GetConversations returns one conversation or the caller's list
// @Summary Get conversations
// @Description With ?id= return a single conversation; without it, list the
// caller's conversations most recently joined first.
// @Tags conversations
// @Produce json
// @Param id query string false "Conversation ID"
// @Success 200 {object} interface{} "Conversation or list of conversations"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - not a participant"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /conversations [get]
func (h *ConversationHandler) GetConversations(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	if id := c.Query("id"); id != "" {
		conversation, err := h.service.GetConversation(c.Request.Context(), id, user)
		if err != nil {
			h.handleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, conversation)
		return
	}

	conversations, err := h.service.ListConversations(c.Request.Context(), user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// UpdateConversation renames a conversation
// @Summary Update a conversation
// @Description Rename a conversation (conversation admins and the global admin only)
// @Tags conversations
// @Accept json
// @Produce json
// @Param id query string true "Conversation ID"
// @Param request body services.UpdateConversationRequest true "Conversation update request"
// @Success 200 {object} models.Conversation
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - not a conversation admin"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /conversations [put]
func (h *ConversationHandler) UpdateConversation(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Query parameter 'id' is required",
		})
		return
	}

	var req services.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	conversation, err := h.service.UpdateConversation(c.Request.Context(), id, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

// StartConsultation finds or creates the caller's consultation thread
// @Summary Start a consultation
// @Description Find or create the private conversation between the caller and
// the configured tutor account.
// @Tags conversations
// @Produce json
// @Success 200 {object} models.Conversation "Existing or newly created conversation"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Consultant account not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /start-consultation [post]
func (h *ConversationHandler) StartConsultation(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	conversation, err := h.service.StartConsultation(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}
