package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

// Message is immutable once created: there is no edit or delete path.
type Message struct {
	ID             string      `json:"id" gorm:"primaryKey;size:36"`
	ConversationID string      `json:"conversation_id" gorm:"not null;size:36;index"`
	SenderID       string      `json:"sender_id" gorm:"not null;size:36"`
	Content        string      `json:"content" gorm:"not null;type:text"`
	MessageType    MessageType `json:"message_type" gorm:"not null;size:20;default:text"`
	Metadata       *string     `json:"metadata" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Sender       *User         `json:"sender,omitempty" gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE"`
	Conversation *Conversation `json:"-" gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// MessageRead records that a user has seen a message. At most one row exists
// per (message, user) pair; duplicate inserts are no-ops.
type MessageRead struct {
	MessageID string    `json:"message_id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"primaryKey;size:36"`
	ReadAt    time.Time `json:"read_at" gorm:"not null"`

	Message *Message `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	User    *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (MessageRead) TableName() string {
	return "message_reads"
}
