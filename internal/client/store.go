package client

import (
	"sync"

	"github.com/TutorHub-2025/messaging-service/internal/models"
)

// Action is the closed set of state transitions the store accepts.
type Action interface {
	isAction()
}

type SetUser struct {
	User *models.User
}

type ClearUser struct{}

type SetConversations struct {
	Conversations []*models.Conversation
}

// UpsertConversation inserts the conversation or replaces the entry with the
// same id, preserving list order on replace.
type UpsertConversation struct {
	Conversation *models.Conversation
}

type SetCurrentConversation struct {
	ID string
}

type SetMessages struct {
	ConversationID string
	Messages       []*models.Message
}

type AppendMessage struct {
	Message *models.Message
}

type SetError struct {
	Err error
}

func (SetUser) isAction()                {}
func (ClearUser) isAction()              {}
func (SetConversations) isAction()       {}
func (UpsertConversation) isAction()     {}
func (SetCurrentConversation) isAction() {}
func (SetMessages) isAction()            {}
func (AppendMessage) isAction()          {}
func (SetError) isAction()               {}

// State is the client's view of the session: identity, conversation list,
// the current conversation and per-conversation message lists.
type State struct {
	User                  *models.User
	Conversations         []*models.Conversation
	CurrentConversationID string
	Messages              map[string][]*models.Message
	Err                   error
}

// Store owns a State and applies Actions to it on a single dispatch
// goroutine, so reducers never race.
type Store struct {
	actions   chan Action
	snapshots chan chan State
	done      chan struct{}
	closeOnce sync.Once
}

func NewStore() *Store {
	s := &Store{
		actions:   make(chan Action, 16),
		snapshots: make(chan chan State),
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

// Dispatch queues an action. Dispatching after Close is a no-op.
func (s *Store) Dispatch(action Action) {
	select {
	case s.actions <- action:
	case <-s.done:
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	reply := make(chan State, 1)
	select {
	case s.snapshots <- reply:
		return <-reply
	case <-s.done:
		return State{}
	}
}

func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Store) run() {
	state := State{
		Messages: make(map[string][]*models.Message),
	}

	for {
		select {
		case action := <-s.actions:
			state = reduce(state, action)
		case reply := <-s.snapshots:
			reply <- snapshot(state)
		case <-s.done:
			return
		}
	}
}

// reduce applies one action. The switch is exhaustive over the Action set; an
// unknown action leaves the state unchanged.
func reduce(state State, action Action) State {
	switch a := action.(type) {
	case SetUser:
		state.User = a.User
		state.Err = nil

	case ClearUser:
		state = State{Messages: make(map[string][]*models.Message)}

	case SetConversations:
		state.Conversations = a.Conversations

	case UpsertConversation:
		replaced := false
		for i, existing := range state.Conversations {
			if existing.ID == a.Conversation.ID {
				state.Conversations[i] = a.Conversation
				replaced = true
				break
			}
		}
		if !replaced {
			state.Conversations = append(state.Conversations, a.Conversation)
		}

	case SetCurrentConversation:
		state.CurrentConversationID = a.ID

	case SetMessages:
		state.Messages[a.ConversationID] = a.Messages

	case AppendMessage:
		id := a.Message.ConversationID
		state.Messages[id] = append(state.Messages[id], a.Message)

	case SetError:
		state.Err = a.Err
	}

	return state
}

func snapshot(state State) State {
	out := state
	out.Conversations = append([]*models.Conversation(nil), state.Conversations...)
	out.Messages = make(map[string][]*models.Message, len(state.Messages))
	for id, messages := range state.Messages {
		out.Messages[id] = append([]*models.Message(nil), messages...)
	}
	return out
}
