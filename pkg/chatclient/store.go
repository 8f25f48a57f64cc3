package chatclient

import (
	"sync"

	"pingup/backend/internal/models"
)

// SuggestionStatus is the lifecycle of the suggestions of the open conversation
type SuggestionStatus string

const (
	StatusIdle    SuggestionStatus = "idle"
	StatusLoading SuggestionStatus = "loading"
	StatusReady   SuggestionStatus = "ready"
	StatusError   SuggestionStatus = "error"
)

// SuggestionState holds at most the three items of the last successful request
type SuggestionState struct {
	Items        []string
	Status       SuggestionStatus
	ErrorMessage string
}

// State is a snapshot of the client. Generation changes every time the
// conversation advances or switches; suggestion results carry the
// generation they were requested at.
type State struct {
	ConversationID string
	Messages       []models.Message
	Suggestions    SuggestionState
	Generation     uint64
}

func (s State) clone() State {
	s.Messages = append([]models.Message(nil), s.Messages...)
	s.Suggestions.Items = append([]string(nil), s.Suggestions.Items...)
	return s
}

func (s *State) clearSuggestions() {
	s.Suggestions = SuggestionState{Status: StatusIdle}
}

func (s *State) current(conversationID string, generation uint64) bool {
	return s.ConversationID == conversationID && s.Generation == generation
}

// Action is a named state transition. apply reports whether the state changed.
type Action interface {
	apply(s *State) bool
}

// OpenConversation switches to the conversation with PeerID
type OpenConversation struct {
	PeerID string
}

func (a OpenConversation) apply(s *State) bool {
	s.ConversationID = a.PeerID
	s.Messages = nil
	s.Generation++
	s.clearSuggestions()
	return true
}

// MessagesLoaded replaces the history of ConversationID
type MessagesLoaded struct {
	ConversationID string
	Messages       []models.Message
}

func (a MessagesLoaded) apply(s *State) bool {
	if a.ConversationID != s.ConversationID {
		return false
	}
	s.Messages = append([]models.Message(nil), a.Messages...)
	return true
}

// MessageAdded appends a sent or received message. Messages of other
// conversations and ones already present are ignored.
type MessageAdded struct {
	Message models.Message
}

func (a MessageAdded) apply(s *State) bool {
	if s.ConversationID == "" ||
		(a.Message.FromUserID != s.ConversationID && a.Message.ToUserID != s.ConversationID) {
		return false
	}
	for _, m := range s.Messages {
		if a.Message.ID != "" && m.ID == a.Message.ID {
			return false
		}
	}
	s.Messages = append(s.Messages, a.Message)
	s.Generation++
	s.clearSuggestions()
	return true
}

// SuggestionsRequested marks a request started at Generation
type SuggestionsRequested struct {
	ConversationID string
	Generation     uint64
}

func (a SuggestionsRequested) apply(s *State) bool {
	if !s.current(a.ConversationID, a.Generation) {
		return false
	}
	s.Suggestions = SuggestionState{Status: StatusLoading}
	return true
}

// SuggestionsLoaded stores the result of a request. Results for a
// conversation or generation that is no longer current are dropped.
type SuggestionsLoaded struct {
	ConversationID string
	Generation     uint64
	Items          []string
}

func (a SuggestionsLoaded) apply(s *State) bool {
	if !s.current(a.ConversationID, a.Generation) {
		return false
	}
	items := a.Items
	if items == nil {
		items = []string{}
	}
	s.Suggestions = SuggestionState{Items: append([]string{}, items...), Status: StatusReady}
	return true
}

// SuggestionsFailed records a failed request, with the same staleness rule
// as SuggestionsLoaded
type SuggestionsFailed struct {
	ConversationID string
	Generation     uint64
	Message        string
}

func (a SuggestionsFailed) apply(s *State) bool {
	if !s.current(a.ConversationID, a.Generation) {
		return false
	}
	s.Suggestions = SuggestionState{Items: []string{}, Status: StatusError, ErrorMessage: a.Message}
	return true
}

// ClearSuggestions drops the current suggestions
type ClearSuggestions struct{}

func (ClearSuggestions) apply(s *State) bool {
	s.clearSuggestions()
	return true
}

// Store is the client state container. State only changes through
// Dispatch; subscribers see every change in dispatch order and must not
// dispatch themselves.
type Store struct {
	mu    sync.Mutex
	state State

	notifyMu sync.Mutex
	subs     map[int]func(State)
	nextSub  int
}

func NewStore() *Store {
	return &Store{
		state: State{Suggestions: SuggestionState{Status: StatusIdle}},
		subs:  make(map[int]func(State)),
	}
}

// State returns a copy of the current state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Dispatch applies a and reports whether it changed the state
func (s *Store) Dispatch(a Action) bool {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	changed := a.apply(&s.state)
	snap := s.state.clone()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(snap)
		}
	}
	return changed
}

// Subscribe calls fn with a snapshot after every change. The returned func
// removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
