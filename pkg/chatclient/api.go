package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pingup/backend/internal/models"
)

// TokenSource returns the session token sent as the bearer credential
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }

// APIError is a non-success answer from the server. Message is what the
// server reported and is safe to show to the user.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// APIClient talks to the PingUp HTTP API on behalf of one signed-in user
type APIClient struct {
	client  *http.Client
	baseURL string
	tokens  TokenSource
}

func NewAPIClient(baseURL string, tokens TokenSource, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APIClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
	}
}

type envelope struct {
	Success     bool             `json:"success"`
	Message     json.RawMessage  `json:"message,omitempty"`
	Code        string           `json:"code,omitempty"`
	Suggestions []string         `json:"suggestions"`
	Messages    []models.Message `json:"messages"`
}

// RequestSuggestions asks for reply suggestions to last. Only that message
// is sent.
func (c *APIClient) RequestSuggestions(ctx context.Context, last models.Message) ([]string, error) {
	body := map[string]any{"messages": []models.Message{last}}

	var out envelope
	if err := c.post(ctx, "/api/ai/reply-suggestions", body, &out, "Failed to generate suggestions"); err != nil {
		return nil, err
	}
	if out.Suggestions == nil {
		return []string{}, nil
	}
	return out.Suggestions, nil
}

// SendMessage posts a message to peer and returns the stored record
func (c *APIClient) SendMessage(ctx context.Context, peer, text, mediaURL string) (*models.Message, error) {
	req := models.SendMessageRequest{ToUserID: peer, Text: text, MediaURL: mediaURL}

	var out envelope
	if err := c.post(ctx, "/api/message/send", req, &out, "Failed to send message"); err != nil {
		return nil, err
	}
	var msg models.Message
	if err := json.Unmarshal(out.Message, &msg); err != nil {
		return nil, fmt.Errorf("decoding sent message: %w", err)
	}
	return &msg, nil
}

// Conversation returns the messages exchanged with peer, oldest first
func (c *APIClient) Conversation(ctx context.Context, peer string) ([]models.Message, error) {
	var out envelope
	if err := c.post(ctx, "/api/message/get", models.ConversationRequest{ToUserID: peer}, &out, "Failed to load messages"); err != nil {
		return nil, err
	}
	if out.Messages == nil {
		return []models.Message{}, nil
	}
	return out.Messages, nil
}

func (c *APIClient) post(ctx context.Context, path string, in any, out *envelope, fallback string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("getting session token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	if resp.StatusCode >= http.StatusBadRequest || !out.Success {
		return &APIError{StatusCode: resp.StatusCode, Code: out.Code, Message: errorMessage(out.Message, fallback)}
	}
	return nil
}

// errorMessage reads the string form of a failure's "message" field
func errorMessage(raw json.RawMessage, fallback string) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s != "" {
		return s
	}
	return fallback
}

// IsUnauthorized reports whether err is a 401 from the server
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
