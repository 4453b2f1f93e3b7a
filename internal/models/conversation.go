package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConversationType string

const (
	ConversationPrivate ConversationType = "private"
	ConversationGroup   ConversationType = "group"
)

// ParticipantRole is the role a user holds within a single conversation,
// distinct from the user's global role.
type ParticipantRole string

const (
	ParticipantAdmin      ParticipantRole = "admin"
	ParticipantMember     ParticipantRole = "member"
	ParticipantClient     ParticipantRole = "client"
	ParticipantConsultant ParticipantRole = "consultant"
)

type Conversation struct {
	ID   string           `json:"id" gorm:"primaryKey;size:36"`
	Name *string          `json:"name" gorm:"size:255"`
	Type ConversationType `json:"type" gorm:"not null;size:20;default:private"`

	// ParticipantKey is the canonicalized "idA|idB" pair for two-party private
	// conversations. The unique index serializes concurrent create-or-return
	// calls for the same pair.
	ParticipantKey *string `json:"-" gorm:"uniqueIndex;size:80"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Participants []ConversationParticipant `json:"participants,omitempty" gorm:"foreignKey:ConversationID"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// HasParticipant reports whether userID appears in the loaded participant list.
func (c *Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// ParticipantPairKey canonicalizes a two-user pair into the unique key used
// for private-conversation dedup. Order of arguments does not matter.
func ParticipantPairKey(userA, userB string) string {
	pair := []string{userA, userB}
	sort.Strings(pair)
	return strings.Join(pair, "|")
}

type ConversationParticipant struct {
	ConversationID string          `json:"conversation_id" gorm:"primaryKey;size:36"`
	UserID         string          `json:"user_id" gorm:"primaryKey;size:36"`
	Role           ParticipantRole `json:"role" gorm:"not null;size:20;default:member"`
	JoinedAt       time.Time       `json:"joined_at" gorm:"not null"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (ConversationParticipant) TableName() string {
	return "conversation_participants"
}
