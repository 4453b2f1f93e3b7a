package services

import (
	"context"
	"log/slog"

	"github.com/TutorHub-2025/messaging-service/internal/events"
	"github.com/TutorHub-2025/messaging-service/internal/models"
)

// eventService publishes domain events fire-and-forget. A publish failure is
// logged and never propagated to the triggering operation.
type eventService struct {
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewEventService(publisher events.EventPublisher, logger *slog.Logger) EventService {
	return &eventService{
		publisher: publisher,
		logger:    logger,
	}
}

func (s *eventService) UserRegistered(ctx context.Context, user *models.User) {
	s.publish(ctx, events.NewEvent(events.EventUserRegistered, events.UserRegisteredEvent{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	}))
}

func (s *eventService) ConversationCreated(ctx context.Context, conversation *models.Conversation, creatorID string) {
	participantIDs := make([]string, 0, len(conversation.Participants))
	for _, p := range conversation.Participants {
		participantIDs = append(participantIDs, p.UserID)
	}

	s.publish(ctx, events.NewEvent(events.EventConversationCreated, events.ConversationCreatedEvent{
		ConversationID: conversation.ID,
		Type:           string(conversation.Type),
		CreatorID:      creatorID,
		ParticipantIDs: participantIDs,
	}))
}

func (s *eventService) ConsultationStarted(ctx context.Context, conversation *models.Conversation, clientID, consultantID string, existing bool) {
	s.publish(ctx, events.NewEvent(events.EventConsultationStarted, events.ConsultationStartedEvent{
		ConversationID: conversation.ID,
		ClientID:       clientID,
		ConsultantID:   consultantID,
		Existing:       existing,
	}))
}

func (s *eventService) MessageSent(ctx context.Context, message *models.Message) {
	s.publish(ctx, events.NewEvent(events.EventMessageSent, events.MessageSentEvent{
		MessageID:      message.ID,
		ConversationID: message.ConversationID,
		SenderID:       message.SenderID,
		MessageType:    string(message.MessageType),
	}))
}

func (s *eventService) publish(ctx context.Context, event *events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
