package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TutorHub-2025/messaging-service/internal/services"
	"github.com/TutorHub-2025/messaging-service/internal/utils"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	BaseHandler
	service services.ExportService
}

func NewExportHandler(service services.ExportService, logger utils.Logger) *ExportHandler {
	return &ExportHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ExportMessages exports a conversation's full message history
// @Summary Export conversation messages
// @Description Download a conversation's message history as an xlsx workbook (admin only)
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param conversationId query string true "Conversation ID"
// @Success 200 {file} file "xlsx attachment"
// @Failure 400 {object} ErrorResponse "Bad request"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - admin only"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/export/messages [get]
func (h *ExportHandler) ExportMessages(c *gin.Context) {
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

	file, err := h.service.ExportConversationMessages(c.Request.Context(), conversationID, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.writeWorkbook(c, file, fmt.Sprintf("messages-%s", conversationID))
}

// ExportReviews exports all reviews
// @Summary Export reviews
// @Description Download all reviews as an xlsx workbook (admin only)
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "xlsx attachment"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden - admin only"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /admin/export/reviews [get]
func (h *ExportHandler) ExportReviews(c *gin.Context) {
	user := GetUserFromContext(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	file, err := h.service.ExportReviews(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.writeWorkbook(c, file, "reviews")
}

func (h *ExportHandler) writeWorkbook(c *gin.Context, file *excelize.File, name string) {
	filename := fmt.Sprintf("%s-%s.xlsx", name, time.Now().Format("2006-01-02"))

	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := file.Write(c.Writer); err != nil {
		// Headers are already out; all we can do is log
		h.LogError(c, err, "Failed to stream workbook")
	}
}
