package ws

import (
	"context"
	"encoding/json"

	"pingup/backend/internal/models"
	"pingup/backend/pkg/logger"
)

// EventMessage is the event type pushed when a message is delivered
const EventMessage = "message"

// Event is the envelope written to websocket clients
type Event struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}

type delivery struct {
	userID  string
	payload []byte
}

type countQuery struct {
	userID string
	reply  chan int
}

// Hub tracks the open connections of every user and pushes new messages to
// the recipient's connections.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	counts     chan countQuery
	done       chan struct{}
	log        *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.GetGlobal()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 256),
		counts:     make(chan countQuery),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client registry until ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.clients {
				for c := range set {
					close(c.send)
				}
			}
			h.clients = map[string]map[*Client]struct{}{}
			return

		case c := <-h.register:
			set, ok := h.clients[c.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[c.userID] = set
			}
			set[c] = struct{}{}
			h.log.Debug("Websocket client registered", "user_id", c.userID, "connections", len(set))

		case c := <-h.unregister:
			h.remove(c)

		case q := <-h.counts:
			q.reply <- len(h.clients[q.userID])

		case d := <-h.deliver:
			for c := range h.clients[d.userID] {
				select {
				case c.send <- d.payload:
				default:
					h.log.Warn("Dropping slow websocket client", "user_id", c.userID)
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// NotifyMessage queues msg for the recipient's connections. It never
// blocks the caller; events are dropped when the hub is saturated.
func (h *Hub) NotifyMessage(msg *models.Message) {
	payload, err := json.Marshal(Event{Type: EventMessage, Message: msg})
	if err != nil {
		h.log.LogError(err, "Failed to encode message event")
		return
	}
	select {
	case h.deliver <- delivery{userID: msg.ToUserID, payload: payload}:
	default:
		h.log.Warn("Websocket delivery queue full", "to_user_id", msg.ToUserID)
	}
}

// Connections returns the number of open connections of userID
func (h *Hub) Connections(userID string) int {
	q := countQuery{userID: userID, reply: make(chan int, 1)}
	select {
	case h.counts <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
