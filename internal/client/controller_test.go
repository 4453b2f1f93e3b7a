package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/TutorHub-2025/messaging-service/internal/models"
)

// fakeAPI is a minimal stand-in for the messaging service that tracks the
// session cookie round trip and the provisioning call.
type fakeAPI struct {
	user               *models.User
	consultation       *models.Conversation
	messages           []*models.Message
	consultationCalls  atomic.Int32
	conversationsCalls atomic.Int32
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "test-token", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"user": f.user})
	})

	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": f.user})
	})

	mux.HandleFunc("/api/conversations", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
			return
		}
		f.conversationsCalls.Add(1)
		writeJSON(w, http.StatusOK, []*models.Conversation{})
	})

	mux.HandleFunc("/api/start-consultation", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
			return
		}
		f.consultationCalls.Add(1)
		writeJSON(w, http.StatusOK, f.consultation)
	})

	mux.HandleFunc("/api/messages", func(w http.ResponseWriter, r *http.Request) {
		if !f.authed(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "User not authenticated"})
			return
		}
		writeJSON(w, http.StatusOK, f.messages)
	})

	return mux
}

func (f *fakeAPI) authed(r *http.Request) bool {
	cookie, err := r.Cookie("session")
	return err == nil && cookie.Value == "test-token"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newTestController(t *testing.T, api *fakeAPI) (*Controller, *Store) {
	t.Helper()

	server := httptest.NewServer(api.handler())
	t.Cleanup(server.Close)

	apiClient, err := New(server.URL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	store := NewStore()
	t.Cleanup(store.Close)

	ctrl := NewController(apiClient, store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctrl.provisionDelay = time.Millisecond
	return ctrl, store
}

func TestControllerClientFlow(t *testing.T) {
	name := "Consultation with Alice"
	api := &fakeAPI{
		user: &models.User{ID: "user-1", Name: "Alice", Role: models.RoleClient},
		consultation: &models.Conversation{
			ID:   "conv-1",
			Name: &name,
			Type: models.ConversationPrivate,
		},
		messages: []*models.Message{
			{ID: "msg-1", ConversationID: "conv-1", Content: "hello"},
		},
	}

	ctrl, store := newTestController(t, api)

	if err := ctrl.Start(context.Background(), "alice@example.com", "password1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if got := api.consultationCalls.Load(); got != 1 {
		t.Errorf("Expected 1 provisioning call, got %d", got)
	}

	state := store.Snapshot()
	if state.User == nil || state.User.ID != "user-1" {
		t.Error("Expected authenticated user in store")
	}
	if state.CurrentConversationID != "conv-1" {
		t.Errorf("Expected consultation made current, got %q", state.CurrentConversationID)
	}
	if len(state.Conversations) != 1 {
		t.Errorf("Expected consultation in conversation list, got %d entries", len(state.Conversations))
	}
	messages := state.Messages["conv-1"]
	if len(messages) != 1 || messages[0].Content != "hello" {
		t.Errorf("Expected message page in store, got %v", messages)
	}
}

func TestControllerAdminSkipsProvisioning(t *testing.T) {
	api := &fakeAPI{
		user: &models.User{ID: "admin-1", Name: "Tutor", Role: models.RoleAdmin},
	}

	ctrl, store := newTestController(t, api)

	if err := ctrl.Start(context.Background(), "tutor@example.com", "password1"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if got := api.consultationCalls.Load(); got != 0 {
		t.Errorf("Admin must not auto-provision, got %d calls", got)
	}
	if got := api.conversationsCalls.Load(); got != 1 {
		t.Errorf("Expected one conversation list fetch, got %d", got)
	}
	if store.Snapshot().CurrentConversationID != "" {
		t.Error("Admin should not have a current conversation selected")
	}
}

func TestControllerLoginFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
	}))
	defer server.Close()

	apiClient, err := New(server.URL)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	store := NewStore()
	defer store.Close()

	ctrl := NewController(apiClient, store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err = ctrl.Start(context.Background(), "alice@example.com", "wrong")
	if err == nil {
		t.Fatal("Expected login failure")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Errorf("Expected 401 APIError, got %v", err)
	}
	if store.Snapshot().Err == nil {
		t.Error("Expected error recorded in store")
	}
}
