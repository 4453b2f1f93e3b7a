package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// consultationDelay gives the initial conversation fetch a head start before
// the provisioning call, mirroring the site's post-login sequence.
const consultationDelay = 1500 * time.Millisecond

// Controller drives the post-authentication flow: identity, conversation
// list, consultation auto-provisioning for clients, then the first message
// page of the current conversation.
type Controller struct {
	api    *Client
	store  *Store
	logger *slog.Logger

	provisionDelay time.Duration
}

func NewController(api *Client, store *Store, logger *slog.Logger) *Controller {
	return &Controller{
		api:            api,
		store:          store,
		logger:         logger,
		provisionDelay: consultationDelay,
	}
}

// Start logs in and reconciles server state into the store. Admins get their
// conversation list and no auto-provisioning; clients additionally get their
// consultation thread found-or-created and made current.
func (ctrl *Controller) Start(ctx context.Context, email, password string) error {
	user, err := ctrl.api.Login(ctx, email, password)
	if err != nil {
		ctrl.store.Dispatch(SetError{Err: err})
		return fmt.Errorf("login failed: %w", err)
	}

	// Confirm the cookie took before treating the session as live
	me, err := ctrl.api.Me(ctx)
	if err != nil {
		ctrl.store.Dispatch(SetError{Err: err})
		return fmt.Errorf("identity check failed: %w", err)
	}
	ctrl.store.Dispatch(SetUser{User: me})

	conversations, err := ctrl.api.ListConversations(ctx)
	if err != nil {
		ctrl.store.Dispatch(SetError{Err: err})
		return fmt.Errorf("failed to list conversations: %w", err)
	}
	ctrl.store.Dispatch(SetConversations{Conversations: conversations})

	if user.IsAdmin() {
		// The admin picks a thread manually
		return nil
	}

	select {
	case <-time.After(ctrl.provisionDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	conversation, err := ctrl.api.StartConsultation(ctx)
	if err != nil {
		// Not fatal; a reload re-triggers the sequence
		ctrl.logger.Error("Consultation provisioning failed", "error", err)
		ctrl.store.Dispatch(SetError{Err: err})
		return nil
	}

	ctrl.store.Dispatch(UpsertConversation{Conversation: conversation})
	ctrl.store.Dispatch(SetCurrentConversation{ID: conversation.ID})

	return ctrl.RefreshMessages(ctx, conversation.ID)
}

// RefreshMessages fetches the newest page for a conversation into the store.
func (ctrl *Controller) RefreshMessages(ctx context.Context, conversationID string) error {
	messages, err := ctrl.api.ListMessages(ctx, conversationID, 0, 0)
	if err != nil {
		ctrl.store.Dispatch(SetError{Err: err})
		return fmt.Errorf("failed to list messages: %w", err)
	}

	ctrl.store.Dispatch(SetMessages{ConversationID: conversationID, Messages: messages})
	return nil
}

// Send posts a message to the current conversation and appends it locally.
func (ctrl *Controller) Send(ctx context.Context, content string) error {
	state := ctrl.store.Snapshot()
	if state.CurrentConversationID == "" {
		return fmt.Errorf("no current conversation")
	}

	message, err := ctrl.api.SendMessage(ctx, state.CurrentConversationID, content)
	if err != nil {
		ctrl.store.Dispatch(SetError{Err: err})
		return fmt.Errorf("failed to send message: %w", err)
	}

	ctrl.store.Dispatch(AppendMessage{Message: message})
	return nil
}

// Logout ends the session and resets the store.
func (ctrl *Controller) Logout(ctx context.Context) error {
	if err := ctrl.api.Logout(ctx); err != nil {
		ctrl.logger.Warn("Logout request failed", "error", err)
	}
	ctrl.store.Dispatch(ClearUser{})
	return nil
}
