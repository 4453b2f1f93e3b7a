package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/TutorHub-2025/messaging-service/internal/auth"
	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
	"github.com/TutorHub-2025/messaging-service/internal/validator"
)

const defaultMessagePageSize = 50

type messagingService struct {
	repo       repositories.Repository
	logger     *slog.Logger
	validator  *validator.Validator
	events     EventService
	adminEmail string
}

func NewMessagingService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, events EventService, adminEmail string) MessagingService {
	return &messagingService{
		repo:       repo,
		logger:     logger,
		validator:  v,
		events:     events,
		adminEmail: adminEmail,
	}
}

// ===== CONVERSATIONS =====

func (s *messagingService) CreateConversation(ctx context.Context, req *CreateConversationRequest, creator *models.User) (*models.Conversation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	convType := req.Type
	if convType == "" {
		convType = models.ConversationPrivate
	}

	// Dedup participant ids; the creator is implicitly added if missing
	participantIDs := dedupeIDs(append([]string{creator.ID}, req.ParticipantIDs...))

	// Every participant must resolve to an existing user
	for _, id := range participantIDs {
		if id == creator.ID {
			continue
		}
		if _, err := s.repo.User().GetByID(ctx, nil, id); err != nil {
			if repositories.IsNotFoundError(err) {
				return nil, fmt.Errorf("%w: %s", ErrParticipantNotFound, id)
			}
			return nil, fmt.Errorf("failed to resolve participant: %w", err)
		}
	}

	now := time.Now()
	participants := make([]models.ConversationParticipant, 0, len(participantIDs))
	for _, id := range participantIDs {
		role := models.ParticipantMember
		if id == creator.ID {
			role = models.ParticipantAdmin
		}
		participants = append(participants, models.ConversationParticipant{
			UserID:   id,
			Role:     role,
			JoinedAt: now,
		})
	}

	conversation := &models.Conversation{
		Name: req.Name,
		Type: convType,
	}
	if convType == models.ConversationPrivate && len(participantIDs) == 2 {
		key := models.ParticipantPairKey(participantIDs[0], participantIDs[1])
		conversation.ParticipantKey = &key
	}

	created, existed, err := s.createOrReturnExisting(ctx, conversation, participants)
	if err != nil {
		return nil, err
	}

	if !existed {
		s.logger.Info("Conversation created", "conversation_id", created.ID, "type", created.Type, "creator_id", creator.ID)
		s.events.ConversationCreated(ctx, created, creator.ID)
	}

	return created, nil
}

// createOrReturnExisting implements race-free idempotent creation for private
// pairs: a fast-path lookup, then a transactional insert, then a re-read when
// the unique participant key catches a concurrent winner.
func (s *messagingService) createOrReturnExisting(ctx context.Context, conversation *models.Conversation, participants []models.ConversationParticipant) (*models.Conversation, bool, error) {
	if conversation.ParticipantKey != nil {
		existing, err := s.repo.Conversation().GetByParticipantKey(ctx, nil, *conversation.ParticipantKey)
		if err == nil {
			return existing, true, nil
		}
		if !repositories.IsNotFoundError(err) {
			return nil, false, fmt.Errorf("failed to check for existing conversation: %w", err)
		}
	}

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Conversation().Create(ctx, nil, conversation); err != nil {
			return err
		}
		for i := range participants {
			participants[i].ConversationID = conversation.ID
		}
		return txRepo.Conversation().AddParticipants(ctx, nil, participants)
	})
	if err != nil {
		if repositories.IsDuplicateError(err) && conversation.ParticipantKey != nil {
			existing, readErr := s.repo.Conversation().GetByParticipantKey(ctx, nil, *conversation.ParticipantKey)
			if readErr != nil {
				return nil, false, fmt.Errorf("failed to re-read conversation after conflict: %w", readErr)
			}
			return existing, true, nil
		}
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}

	created, err := s.repo.Conversation().GetByID(ctx, nil, conversation.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load created conversation: %w", err)
	}

	return created, false, nil
}

func (s *messagingService) GetConversation(ctx context.Context, id string, caller *models.User) (*models.Conversation, error) {
	conversation, err := s.repo.Conversation().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	if !auth.CanAccessConversation(caller, conversation) {
		return nil, NewPermissionError(caller.ID, id, "conversation", "read", "not a participant")
	}

	return conversation, nil
}

func (s *messagingService) ListConversations(ctx context.Context, userID string) ([]*models.Conversation, error) {
	conversations, err := s.repo.Conversation().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

func (s *messagingService) UpdateConversation(ctx context.Context, id string, req *UpdateConversationRequest, caller *models.User) (*models.Conversation, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	conversation, err := s.repo.Conversation().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	if !auth.CanManageConversation(caller, conversation) {
		return nil, NewPermissionError(caller.ID, id, "conversation", "update", "not a conversation admin")
	}

	if req.Name != nil {
		conversation.Name = req.Name
	}
	conversation.UpdatedAt = time.Now()

	if err := s.repo.Conversation().Update(ctx, nil, conversation); err != nil {
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	s.logger.Info("Conversation updated", "conversation_id", id, "user_id", caller.ID)

	return conversation, nil
}

// ===== MESSAGES =====

func (s *messagingService) SendMessage(ctx context.Context, req *SendMessageRequest, sender *models.User) (*models.Message, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = models.MessageText
	}

	// Sender must currently be a participant; global admins get no exemption
	// here, only participants may post.
	isParticipant, err := s.repo.Conversation().IsParticipant(ctx, nil, req.ConversationID, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participancy: %w", err)
	}
	if !isParticipant {
		return nil, ErrNotAParticipant
	}

	message := &models.Message{
		ConversationID: req.ConversationID,
		SenderID:       sender.ID,
		Content:        req.Content,
		MessageType:    messageType,
		Metadata:       req.Metadata,
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Message().Create(ctx, nil, message); err != nil {
			return err
		}
		// Bump the conversation for inbox ordering
		return txRepo.Conversation().Touch(ctx, nil, req.ConversationID, time.Now())
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	s.logger.Info("Message sent", "message_id", message.ID, "conversation_id", req.ConversationID, "sender_id", sender.ID)
	s.events.MessageSent(ctx, message)

	message.Sender = sender

	return message, nil
}

func (s *messagingService) ListMessages(ctx context.Context, conversationID string, caller *models.User, limit, offset int) ([]*models.Message, error) {
	conversation, err := s.repo.Conversation().GetByID(ctx, nil, conversationID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	if !auth.CanAccessConversation(caller, conversation) {
		return nil, NewPermissionError(caller.ID, conversationID, "conversation", "read", "not a participant")
	}

	if limit <= 0 {
		limit = defaultMessagePageSize
	}
	if offset < 0 {
		offset = 0
	}

	// Newest-first page for pagination, reversed to chronological below
	messages, err := s.repo.Message().ListByConversation(ctx, nil, conversationID, repositories.MessageFilters{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	// Side effect of listing: mark the page read for the caller. The caller's
	// own messages are excluded from the sweep.
	now := time.Now()
	reads := make([]models.MessageRead, 0, len(messages))
	for _, m := range messages {
		if m.SenderID == caller.ID {
			continue
		}
		reads = append(reads, models.MessageRead{
			MessageID: m.ID,
			UserID:    caller.ID,
			ReadAt:    now,
		})
	}
	if err := s.repo.Message().MarkRead(ctx, nil, reads); err != nil {
		// Listing still succeeds; receipts are best-effort
		s.logger.Warn("Failed to mark messages read", "conversation_id", conversationID, "user_id", caller.ID, "error", err)
	}

	reverseMessages(messages)

	return messages, nil
}

func (s *messagingService) MarkMessageRead(ctx context.Context, messageID, userID string) error {
	if messageID == "" {
		return fmt.Errorf("%w: empty message id", ErrMessageNotFound)
	}

	reads := []models.MessageRead{{
		MessageID: messageID,
		UserID:    userID,
		ReadAt:    time.Now(),
	}}

	if err := s.repo.Message().MarkRead(ctx, nil, reads); err != nil {
		return fmt.Errorf("failed to mark message read: %w", err)
	}

	return nil
}

// ===== CONSULTATION AUTO-PROVISIONING =====

// StartConsultation finds or creates the private admin↔client consultation
// thread. The existing thread is returned as-is; a new one is named
// "Consultation with {client name}" with client/consultant participant roles.
func (s *messagingService) StartConsultation(ctx context.Context, client *models.User) (*models.Conversation, error) {
	admin, err := s.repo.User().GetByEmail(ctx, nil, s.adminEmail)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to look up admin: %w", err)
	}

	if client.ID == admin.ID {
		return nil, fmt.Errorf("%w: admin cannot start a consultation with themselves", ErrAdminNotFound)
	}

	name := fmt.Sprintf("Consultation with %s", client.Name)
	key := models.ParticipantPairKey(client.ID, admin.ID)
	now := time.Now()

	conversation := &models.Conversation{
		Name:           &name,
		Type:           models.ConversationPrivate,
		ParticipantKey: &key,
	}
	participants := []models.ConversationParticipant{
		{UserID: client.ID, Role: models.ParticipantClient, JoinedAt: now},
		{UserID: admin.ID, Role: models.ParticipantConsultant, JoinedAt: now},
	}

	created, existed, err := s.createOrReturnExisting(ctx, conversation, participants)
	if err != nil {
		return nil, err
	}

	if !existed {
		s.logger.Info("Consultation conversation created", "conversation_id", created.ID, "client_id", client.ID)
	}
	s.events.ConsultationStarted(ctx, created, client.ID, admin.ID, existed)

	return created, nil
}

// ===== HELPERS =====

func dedupeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func reverseMessages(messages []*models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
