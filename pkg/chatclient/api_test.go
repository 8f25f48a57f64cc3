package chatclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pingup/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSuggestionsRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/reply-suggestions", r.URL.Path)
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

		var body struct {
			Messages []models.Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 1)
		assert.Equal(t, "see you tomorrow?", body.Messages[0].Text)

		_, _ = w.Write([]byte(`{"success":true,"suggestions":["Sure!","Can't wait","See you then"]}`))
	}))
	defer srv.Close()

	c := NewAPIClient(srv.URL, StaticToken("session-token"), time.Second)
	got, err := c.RequestSuggestions(context.Background(), models.Message{Text: "see you tomorrow?"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Sure!", "Can't wait", "See you then"}, got)
}

func TestAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"provider failure", http.StatusInternalServerError, `{"success":false,"message":"network down","code":"GENERATION_FAILED"}`, "network down"},
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"message":"Unauthorized","code":"UNAUTHORIZED"}`, "Unauthorized"},
		{"non json", http.StatusBadGateway, `<html>bad gateway</html>`, "Bad Gateway"},
		{"success false without message", http.StatusOK, `{"success":false}`, "Failed to generate suggestions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewAPIClient(srv.URL, StaticToken("t"), time.Second)
			_, err := c.RequestSuggestions(context.Background(), models.Message{Text: "hi"})

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.status == http.StatusUnauthorized, IsUnauthorized(err))
		})
	}
}

func TestSendMessageAndConversation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/message/send", func(w http.ResponseWriter, r *http.Request) {
		var req models.SendMessageRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "bob", req.ToUserID)
		_, _ = w.Write([]byte(`{"success":true,"message":{"_id":"m1","from_user_id":"me","to_user_id":"bob","text":"` + req.Text + `","message_type":"text"}}`))
	})
	mux.HandleFunc("/api/message/get", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"messages":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewAPIClient(srv.URL+"/", StaticToken("t"), time.Second)

	sent, err := c.SendMessage(context.Background(), "bob", "hello", "")
	require.NoError(t, err)
	assert.Equal(t, "m1", sent.ID)
	assert.Equal(t, "hello", sent.Text)

	msgs, err := c.Conversation(context.Background(), "bob")
	require.NoError(t, err)
	assert.NotNil(t, msgs)
	assert.Empty(t, msgs)
}
