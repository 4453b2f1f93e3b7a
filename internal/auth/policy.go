package auth

import (
	"github.com/TutorHub-2025/messaging-service/internal/models"
)

// Authorization policy: pure decision functions, no I/O.

// IsAdmin reports whether the user holds the global admin (tutor) role.
func IsAdmin(user *models.User) bool {
	return user != nil && user.Role == models.RoleAdmin
}

// CanAccessConversation gates conversation read/update: admins see everything,
// everyone else must be a participant. The conversation's participant list
// must already be loaded.
func CanAccessConversation(user *models.User, conversation *models.Conversation) bool {
	if user == nil || conversation == nil {
		return false
	}
	if IsAdmin(user) {
		return true
	}
	return conversation.HasParticipant(user.ID)
}

// CanManageConversation gates renames: the caller must hold the
// conversation-scoped admin role or be a global admin.
func CanManageConversation(user *models.User, conversation *models.Conversation) bool {
	if user == nil || conversation == nil {
		return false
	}
	if IsAdmin(user) {
		return true
	}
	for _, p := range conversation.Participants {
		if p.UserID == user.ID && p.Role == models.ParticipantAdmin {
			return true
		}
	}
	return false
}

// CanViewUser restricts user-record reads: a client may only fetch their own
// record, an admin may fetch anyone.
func CanViewUser(caller *models.User, targetID string) bool {
	if caller == nil {
		return false
	}
	return IsAdmin(caller) || caller.ID == targetID
}
