package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
	"github.com/TutorHub-2025/messaging-service/internal/validator"
)

// BaseHandler carries the shared logging and error-mapping behavior every
// domain handler embeds.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message,omitempty"`
	Success bool   `json:"success"`
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	h.requestLogger(c).Debug(msg, "method", c.Request.Method, "path", c.Request.URL.Path)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	h.requestLogger(c).Error(msg, "error", err, "path", c.Request.URL.Path)
}

func (h *BaseHandler) requestLogger(c *gin.Context) utils.Logger {
	if logger := utils.LoggerFromContext(c.Request.Context()); logger != nil {
		return logger
	}
	return h.logger
}

// handleServiceError maps service-layer errors to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case validator.IsValidationError(err):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validator.ToValidationErrors(err),
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid email or password",
		})
	case services.IsPermissionError(err), errors.Is(err, services.ErrNotAParticipant):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Conversation not found",
		})
	case errors.Is(err, services.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Message not found",
		})
	case errors.Is(err, services.ErrParticipantNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Participant not found",
		})
	case errors.Is(err, services.ErrAdminNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Consultant account not found",
		})
	case errors.Is(err, services.ErrEmailAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Email already registered",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
