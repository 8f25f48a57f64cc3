package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"pingup/backend/internal/models"
	"pingup/backend/pkg/logger"

	"github.com/gorilla/websocket"
)

type streamEvent struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}

// Stream receives pushed messages over the server websocket and adds those
// of the open conversation to the store.
type Stream struct {
	url    string
	tokens TokenSource
	store  *Store
	dialer *websocket.Dialer
	log    *logger.Logger
}

// NewStream connects to {baseURL}/api/ws; http and https become ws and wss
func NewStream(baseURL string, tokens TokenSource, store *Store, log *logger.Logger) *Stream {
	if log == nil {
		log = logger.GetGlobal()
	}
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return &Stream{
		url:    u + "/api/ws",
		tokens: tokens,
		store:  store,
		dialer: websocket.DefaultDialer,
		log:    log,
	}
}

// Run reads events until ctx is done or the connection drops. It returns
// nil when ctx ends the stream.
func (s *Stream) Run(ctx context.Context) error {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("getting session token: %w", err)
	}

	conn, _, err := s.dialer.DialContext(ctx, s.url+"?token="+url.QueryEscape(token), nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", s.url, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("reading stream: %w", err)
		}

		var ev streamEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.log.Warn("Ignoring malformed stream event", "error", err.Error())
			continue
		}
		if ev.Type != "message" || ev.Message == nil {
			continue
		}
		s.store.Dispatch(MessageAdded{Message: *ev.Message})
	}
}
