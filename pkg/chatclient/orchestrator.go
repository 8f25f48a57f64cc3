package chatclient

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"pingup/backend/internal/models"
	"pingup/backend/pkg/logger"
)

var (
	ErrNoConversation = errors.New("no conversation is open")
	ErrEmptyMessage   = errors.New("message text or media is required")
)

// Notifier shows transient messages to the user
type Notifier interface {
	Warn(msg string)
	Error(msg string)
}

// API is the part of the server API the orchestrator needs
type API interface {
	RequestSuggestions(ctx context.Context, last models.Message) ([]string, error)
	SendMessage(ctx context.Context, peer, text, mediaURL string) (*models.Message, error)
	Conversation(ctx context.Context, peer string) ([]models.Message, error)
}

// Orchestrator drives suggestion requests for the open conversation. At
// most one request is in flight; triggers arriving meanwhile are dropped.
type Orchestrator struct {
	api      API
	store    *Store
	notifier Notifier
	log      *logger.Logger

	inFlight atomic.Bool
}

func NewOrchestrator(api API, store *Store, notifier Notifier, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &Orchestrator{api: api, store: store, notifier: notifier, log: log}
}

// Busy reports whether a suggestion request is in flight
func (o *Orchestrator) Busy() bool {
	return o.inFlight.Load()
}

// RequestSuggestions asks the server for replies to the last message of the
// open conversation and blocks until the result is applied or dropped.
func (o *Orchestrator) RequestSuggestions(ctx context.Context) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer o.inFlight.Store(false)

	st := o.store.State()
	if len(st.Messages) == 0 {
		o.notifier.Warn("No messages to get suggestions from")
		return
	}
	last := st.Messages[len(st.Messages)-1]
	if last.Text == "" {
		o.notifier.Warn("No valid message to get suggestions for")
		return
	}

	o.store.Dispatch(SuggestionsRequested{ConversationID: st.ConversationID, Generation: st.Generation})

	items, err := o.api.RequestSuggestions(ctx, last)
	if err != nil {
		o.log.Debug("Suggestion request failed", "conversation", st.ConversationID, "error", err.Error())
		applied := o.store.Dispatch(SuggestionsFailed{
			ConversationID: st.ConversationID,
			Generation:     st.Generation,
			Message:        err.Error(),
		})
		if applied {
			o.notifier.Error(err.Error())
		}
		return
	}

	if !o.store.Dispatch(SuggestionsLoaded{ConversationID: st.ConversationID, Generation: st.Generation, Items: items}) {
		o.log.Debug("Dropped stale suggestions", "conversation", st.ConversationID)
	}
}

// SelectSuggestion returns suggestion i for the compose field and clears
// the list
func (o *Orchestrator) SelectSuggestion(i int) (string, bool) {
	items := o.store.State().Suggestions.Items
	if i < 0 || i >= len(items) {
		return "", false
	}
	o.store.Dispatch(ClearSuggestions{})
	return items[i], true
}

// Send posts a message to the open conversation. The stored message is
// added to the state, which also clears the suggestions.
func (o *Orchestrator) Send(ctx context.Context, text, mediaURL string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" && mediaURL == "" {
		return nil, ErrEmptyMessage
	}
	peer := o.store.State().ConversationID
	if peer == "" {
		return nil, ErrNoConversation
	}

	msg, err := o.api.SendMessage(ctx, peer, text, mediaURL)
	if err != nil {
		o.notifier.Error(err.Error())
		return nil, err
	}
	o.store.Dispatch(MessageAdded{Message: *msg})
	return msg, nil
}

// Open switches to the conversation with peer and loads its history
func (o *Orchestrator) Open(ctx context.Context, peer string) error {
	o.store.Dispatch(OpenConversation{PeerID: peer})

	msgs, err := o.api.Conversation(ctx, peer)
	if err != nil {
		o.notifier.Error(err.Error())
		return err
	}
	o.store.Dispatch(MessagesLoaded{ConversationID: peer, Messages: msgs})
	return nil
}
