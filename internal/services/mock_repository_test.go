package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/TutorHub-2025/messaging-service/internal/models"
	"github.com/TutorHub-2025/messaging-service/internal/repositories"
)

// mockRepository is an in-memory Repository implementation for service tests.
type mockRepository struct {
	mu sync.Mutex

	users         map[string]*models.User    // by id
	sessions      map[string]*models.Session // by token
	conversations map[string]*models.Conversation
	participants  map[string][]models.ConversationParticipant // by conversation id
	messages      map[string][]*models.Message                // by conversation id, insertion order
	reads         map[string]bool                             // "messageID|userID"
	reviews       []*models.Review

	idSeq int
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:         make(map[string]*models.User),
		sessions:      make(map[string]*models.Session),
		conversations: make(map[string]*models.Conversation),
		participants:  make(map[string][]models.ConversationParticipant),
		messages:      make(map[string][]*models.Message),
		reads:         make(map[string]bool),
	}
}

func (m *mockRepository) nextID(prefix string) string {
	m.idSeq++
	return fmt.Sprintf("%s-%d", prefix, m.idSeq)
}

func (m *mockRepository) User() repositories.UserRepository                 { return &mockUserRepo{m} }
func (m *mockRepository) Session() repositories.SessionRepository           { return &mockSessionRepo{m} }
func (m *mockRepository) Conversation() repositories.ConversationRepository { return &mockConvRepo{m} }
func (m *mockRepository) Message() repositories.MessageRepository           { return &mockMessageRepo{m} }
func (m *mockRepository) Review() repositories.ReviewRepository             { return &mockReviewRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== USERS =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = r.m.nextID("user")
	}
	user.CreatedAt = time.Now()
	clone := *user
	r.m.users[user.ID] = &clone
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	user, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*models.User
	for _, u := range r.m.users {
		if filters.Role != nil && u.Role != *filters.Role {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *user
	r.m.users[user.ID] = &clone
	return nil
}

func (r *mockUserRepo) UpdateLastLogin(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	user, ok := r.m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	user.LastLogin = &at
	return nil
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, u := range r.m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// ===== SESSIONS =====

type mockSessionRepo struct{ m *mockRepository }

func (r *mockSessionRepo) Create(ctx context.Context, tx *gorm.DB, session *models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if session.ID == "" {
		session.ID = r.m.nextID("session")
	}
	clone := *session
	r.m.sessions[session.Token] = &clone
	return nil
}

func (r *mockSessionRepo) GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Session, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	session, ok := r.m.sessions[token]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	clone := *session
	if user, ok := r.m.users[session.UserID]; ok {
		userClone := *user
		clone.User = &userClone
	}
	return &clone, nil
}

func (r *mockSessionRepo) DeleteByToken(ctx context.Context, tx *gorm.DB, token string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	delete(r.m.sessions, token)
	return nil
}

func (r *mockSessionRepo) DeleteByUser(ctx context.Context, tx *gorm.DB, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for token, s := range r.m.sessions {
		if s.UserID == userID {
			delete(r.m.sessions, token)
		}
	}
	return nil
}

func (r *mockSessionRepo) DeleteExpired(ctx context.Context, tx *gorm.DB, before time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var deleted int64
	for token, s := range r.m.sessions {
		if !s.ExpiresAt.After(before) {
			delete(r.m.sessions, token)
			deleted++
		}
	}
	return deleted, nil
}

// ===== CONVERSATIONS =====

type mockConvRepo struct{ m *mockRepository }

func (r *mockConvRepo) Create(ctx context.Context, tx *gorm.DB, conversation *models.Conversation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if conversation.ParticipantKey != nil {
		for _, c := range r.m.conversations {
			if c.ParticipantKey != nil && *c.ParticipantKey == *conversation.ParticipantKey {
				return repositories.ErrDuplicateKey
			}
		}
	}
	if conversation.ID == "" {
		conversation.ID = r.m.nextID("conv")
	}
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt
	clone := *conversation
	clone.Participants = nil
	r.m.conversations[conversation.ID] = &clone
	return nil
}

func (r *mockConvRepo) load(id string) *models.Conversation {
	conversation := r.m.conversations[id]
	if conversation == nil {
		return nil
	}
	clone := *conversation
	clone.Participants = nil
	for _, p := range r.m.participants[id] {
		pc := p
		if user, ok := r.m.users[p.UserID]; ok {
			userClone := *user
			pc.User = &userClone
		}
		clone.Participants = append(clone.Participants, pc)
	}
	return &clone
}

func (r *mockConvRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Conversation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	conversation := r.load(id)
	if conversation == nil {
		return nil, repositories.ErrNotFound
	}
	return conversation, nil
}

func (r *mockConvRepo) GetByParticipantKey(ctx context.Context, tx *gorm.DB, key string) (*models.Conversation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for id, c := range r.m.conversations {
		if c.ParticipantKey != nil && *c.ParticipantKey == key {
			return r.load(id), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockConvRepo) Update(ctx context.Context, tx *gorm.DB, conversation *models.Conversation) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.conversations[conversation.ID]; !ok {
		return repositories.ErrNotFound
	}
	clone := *conversation
	clone.Participants = nil
	r.m.conversations[conversation.ID] = &clone
	return nil
}

func (r *mockConvRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.Conversation, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	type entry struct {
		conversation *models.Conversation
		joinedAt     time.Time
	}
	var entries []entry
	for id := range r.m.conversations {
		for _, p := range r.m.participants[id] {
			if p.UserID == userID {
				entries = append(entries, entry{conversation: r.load(id), joinedAt: p.JoinedAt})
			}
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].joinedAt.After(entries[j].joinedAt) })

	out := make([]*models.Conversation, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.conversation)
	}
	return out, nil
}

func (r *mockConvRepo) AddParticipants(ctx context.Context, tx *gorm.DB, participants []models.ConversationParticipant) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, p := range participants {
		exists := false
		for _, existing := range r.m.participants[p.ConversationID] {
			if existing.UserID == p.UserID {
				exists = true
				break
			}
		}
		if !exists {
			r.m.participants[p.ConversationID] = append(r.m.participants[p.ConversationID], p)
		}
	}
	return nil
}

func (r *mockConvRepo) IsParticipant(ctx context.Context, tx *gorm.DB, conversationID, userID string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, p := range r.m.participants[conversationID] {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockConvRepo) Touch(ctx context.Context, tx *gorm.DB, id string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	conversation, ok := r.m.conversations[id]
	if !ok {
		return repositories.ErrNotFound
	}
	conversation.UpdatedAt = at
	return nil
}

// ===== MESSAGES =====

type mockMessageRepo struct{ m *mockRepository }

func (r *mockMessageRepo) Create(ctx context.Context, tx *gorm.DB, message *models.Message) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if message.ID == "" {
		message.ID = r.m.nextID("msg")
	}
	message.CreatedAt = time.Now()
	clone := *message
	r.m.messages[message.ConversationID] = append(r.m.messages[message.ConversationID], &clone)
	return nil
}

func (r *mockMessageRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, msgs := range r.m.messages {
		for _, m := range msgs {
			if m.ID == id {
				clone := *m
				return &clone, nil
			}
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockMessageRepo) ListByConversation(ctx context.Context, tx *gorm.DB, conversationID string, filters repositories.MessageFilters) ([]*models.Message, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	msgs := r.m.messages[conversationID]

	// Newest first
	out := make([]*models.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		clone := *msgs[i]
		if user, ok := r.m.users[clone.SenderID]; ok {
			userClone := *user
			clone.Sender = &userClone
		}
		out = append(out, &clone)
	}

	if filters.Offset > 0 {
		if filters.Offset >= len(out) {
			return nil, nil
		}
		out = out[filters.Offset:]
	}
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (r *mockMessageRepo) MarkRead(ctx context.Context, tx *gorm.DB, reads []models.MessageRead) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, read := range reads {
		r.m.reads[read.MessageID+"|"+read.UserID] = true
	}
	return nil
}

func (r *mockMessageRepo) CountReads(ctx context.Context, tx *gorm.DB, messageID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var count int64
	for key := range r.m.reads {
		if len(key) > len(messageID) && key[:len(messageID)] == messageID && key[len(messageID)] == '|' {
			count++
		}
	}
	return count, nil
}

// hasRead reports whether a read receipt exists, for assertions.
func (m *mockRepository) hasRead(messageID, userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.reads[messageID+"|"+userID]
}

// ===== REVIEWS =====

type mockReviewRepo struct{ m *mockRepository }

func (r *mockReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *models.Review) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if review.ID == "" {
		review.ID = r.m.nextID("review")
	}
	review.CreatedAt = time.Now()
	clone := *review
	r.m.reviews = append(r.m.reviews, &clone)
	return nil
}

func (r *mockReviewRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ReviewFilters) ([]*models.Review, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var out []*models.Review
	for _, review := range r.m.reviews {
		if filters.VerifiedOnly && !review.Verified {
			continue
		}
		clone := *review
		out = append(out, &clone)
	}
	return out, int64(len(out)), nil
}
