package services

import (
	"context"
	"testing"

	"github.com/TutorHub-2025/messaging-service/internal/events"
	"github.com/TutorHub-2025/messaging-service/internal/models"
)

func TestEventEnvelope(t *testing.T) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewEventService(publisher, logger)

	svc.UserRegistered(context.Background(), &models.User{
		ID:    "user-1",
		Email: "alice@example.com",
		Role:  models.RoleClient,
	})

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}

	event := published[0]
	if event.ID == "" {
		t.Error("Expected a generated event id")
	}
	if event.Type != events.EventUserRegistered {
		t.Errorf("Expected type %q, got %q", events.EventUserRegistered, event.Type)
	}
	if event.Source != events.Source {
		t.Errorf("Expected source %q, got %q", events.Source, event.Source)
	}
	if event.Version != events.Version {
		t.Errorf("Expected version %q, got %q", events.Version, event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Expected a timestamp")
	}

	data, ok := event.Data.(events.UserRegisteredEvent)
	if !ok {
		t.Fatalf("Expected UserRegisteredEvent payload, got %T", event.Data)
	}
	if data.UserID != "user-1" || data.Role != string(models.RoleClient) {
		t.Errorf("Unexpected payload: %+v", data)
	}
}

func TestConversationCreatedPayload(t *testing.T) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewEventService(publisher, logger)

	conversation := &models.Conversation{
		ID:   "conv-1",
		Type: models.ConversationGroup,
		Participants: []models.ConversationParticipant{
			{UserID: "user-1"},
			{UserID: "user-2"},
		},
	}

	svc.ConversationCreated(context.Background(), conversation, "user-1")

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(published))
	}

	data, ok := published[0].Data.(events.ConversationCreatedEvent)
	if !ok {
		t.Fatalf("Expected ConversationCreatedEvent payload, got %T", published[0].Data)
	}
	if data.ConversationID != "conv-1" || data.CreatorID != "user-1" {
		t.Errorf("Unexpected payload: %+v", data)
	}
	if len(data.ParticipantIDs) != 2 {
		t.Errorf("Expected 2 participant ids, got %v", data.ParticipantIDs)
	}
}

func TestConsultationStartedExistingFlag(t *testing.T) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewEventService(publisher, logger)

	conversation := &models.Conversation{ID: "conv-1", Type: models.ConversationPrivate}

	svc.ConsultationStarted(context.Background(), conversation, "client-1", "admin-1", false)
	svc.ConsultationStarted(context.Background(), conversation, "client-1", "admin-1", true)

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(published))
	}

	first := published[0].Data.(events.ConsultationStartedEvent)
	second := published[1].Data.(events.ConsultationStartedEvent)
	if first.Existing || !second.Existing {
		t.Errorf("Expected existing flags false then true, got %v and %v", first.Existing, second.Existing)
	}
}

func TestPublishFailureIsSwallowed(t *testing.T) {
	logger := testLogger()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewEventService(publisher, logger)

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Publishing after close fails inside the publisher; the service must not panic
	svc.MessageSent(context.Background(), &models.Message{
		ID:             "msg-1",
		ConversationID: "conv-1",
		SenderID:       "user-1",
		MessageType:    models.MessageText,
	})

	if got := len(publisher.GetPublishedEvents()); got != 0 {
		t.Errorf("Expected no events after close, got %d", got)
	}
}
