package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
)

type MessageHandler struct {
	BaseHandler
	service services.MessagingService
}

func NewMessageHandler(service services.MessagingService, logger utils.Logger) *MessageHandler {
	return &MessageHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// SendMessage posts a message to a conversation
// @Summary Send a message
// @Description Post a message to a conversation the caller participates in
// @Tags messages
// @Accept json
// @Produce json
// @Param request body services.SendMessageRequest true "Message send request"
// @Success 201 {object} models.Message "Created message with sender attached"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - not a participant"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	message, err := h.service.SendMessage(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

// GetMessages returns a chronological page of messages
// @Summary List messages
// @Description Get a page of a conversation's messages in chronological order.
// Listing marks the returned messages read for the caller.
// @Tags messages
// @Produce json
// @Param conversationId query string true "Conversation ID"
// @Param limit query int false "Page size (default: 50)"
// @Param offset query int false "Offset from the newest message (default: 0)"
// @Success 200 {array} models.Message
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - not a participant"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /messages [get]
func (h *MessageHandler) GetMessages(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	conversationID := c.Query("conversationId")
	if conversationID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Query parameter 'conversationId' is required",
		})
		return
	}

	limit, offset := parsePageParams(c)

	messages, err := h.service.ListMessages(c.Request.Context(), conversationID, user, limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

type markReadRequest struct {
	MessageID string `json:"messageId" binding:"required"`
}

// MarkMessageRead records a read receipt for a single message
// @Summary Mark a message read
// @Description Record a read receipt for the caller on one message; repeated
// calls are no-ops.
// @Tags messages
// @Accept json
// @Produce json
// @Param request body markReadRequest true "Message to mark read"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /messages [put]
func (h *MessageHandler) MarkMessageRead(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	var req markReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	if err := h.service.MarkMessageRead(c.Request.Context(), req.MessageID, user.ID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ===== HELPERS =====

func parsePageParams(c *gin.Context) (limit, offset int) {
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o > 0 {
			offset = o
		}
	}
	return limit, offset
}
