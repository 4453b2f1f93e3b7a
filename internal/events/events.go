package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	// Topic carries all domain events; consumers filter on Event.Type.
	Topic = "messaging.events"

	Source  = "messaging-service"
	Version = "1.0"
)

// Event types published by the service.
const (
	EventUserRegistered      = "user.registered"
	EventConversationCreated = "conversation.created"
	EventConsultationStarted = "consultation.started"
	EventMessageSent         = "message.sent"
)

// Event is the envelope for all published domain events.
type Event struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh id and current timestamp.
func NewEvent(eventType string, data interface{}) *Event {
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// EventPublisher abstracts the transport (in-process channel, Kafka, mock).
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// ===== EVENT PAYLOADS =====

type UserRegisteredEvent struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type ConversationCreatedEvent struct {
	ConversationID string   `json:"conversation_id"`
	Type           string   `json:"type"`
	CreatorID      string   `json:"creator_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

type ConsultationStartedEvent struct {
	ConversationID string `json:"conversation_id"`
	ClientID       string `json:"client_id"`
	ConsultantID   string `json:"consultant_id"`
	Existing       bool   `json:"existing"`
}

type MessageSentEvent struct {
	MessageID      string `json:"message_id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	MessageType    string `json:"message_type"`
}
