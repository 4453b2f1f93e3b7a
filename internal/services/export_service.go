package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/TutorHub-2025/messaging-service/internal/auth"
	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
	}
}

// ExportConversationMessages builds an xlsx workbook with the full message
// history of a conversation. Admin only.
func (s *exportService) ExportConversationMessages(ctx context.Context, conversationID string, caller *models.User) (*excelize.File, error) {
	if !auth.IsAdmin(caller) {
		return nil, NewPermissionError(caller.ID, conversationID, "conversation", "export", "admin only")
	}

	conversation, err := s.repo.Conversation().GetByID(ctx, nil, conversationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	// Limit 0 means the entire history, newest first
	messages, err := s.repo.Message().ListByConversation(ctx, nil, conversationID, repositories.MessageFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages for export: %w", err)
	}
	reverseMessages(messages)

	f := excelize.NewFile()
	const sheet = "Messages"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to set sheet name: %w", err)
	}

	headers := []string{"Message ID", "Sent At", "Sender", "Sender Email", "Type", "Content"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return nil, err
	}

	for i, m := range messages {
		sender, senderEmail := m.SenderID, ""
		if m.Sender != nil {
			sender = m.Sender.Name
			senderEmail = m.Sender.Email
		}
		row := []string{
			m.ID,
			m.CreatedAt.Format("2006-01-02 15:04:05"),
			sender,
			senderEmail,
			string(m.MessageType),
			m.Content,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Conversation exported", "conversation_id", conversation.ID, "messages", len(messages), "admin_id", caller.ID)

	return f, nil
}

// ExportReviews builds an xlsx workbook with all submitted reviews. Admin only.
func (s *exportService) ExportReviews(ctx context.Context, caller *models.User) (*excelize.File, error) {
	if !auth.IsAdmin(caller) {
		return nil, NewPermissionError(caller.ID, "", "review", "export", "admin only")
	}

	reviews, _, err := s.repo.Review().List(ctx, nil, repositories.ReviewFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for export: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Reviews"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to set sheet name: %w", err)
	}

	headers := []string{"Review ID", "Submitted At", "Name", "Email", "Role", "Subject", "Rating", "Verified", "Review"}
	if err := writeRow(f, sheet, 1, headers); err != nil {
		return nil, err
	}

	for i, r := range reviews {
		row := []string{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Name,
			r.Email,
			r.Role,
			r.Subject,
			fmt.Sprintf("%d", r.Rating),
			fmt.Sprintf("%t", r.Verified),
			r.Review,
		}
		if err := writeRow(f, sheet, i+2, row); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Reviews exported", "count", len(reviews), "admin_id", caller.ID)

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
