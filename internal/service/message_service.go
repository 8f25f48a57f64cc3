package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pingup/backend/internal/models"
	"pingup/backend/internal/repository"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message needs text or media")

// MessageNotifier is told about every stored message
type MessageNotifier interface {
	NotifyMessage(msg *models.Message)
}

type MessageService struct {
	messages repository.MessageRepository
	notifier MessageNotifier
	now      func() time.Time
}

func NewMessageService(messages repository.MessageRepository, notifier MessageNotifier) *MessageService {
	return &MessageService{
		messages: messages,
		notifier: notifier,
		now:      time.Now,
	}
}

// Send stores a message from one user to another. A message with a media
// url is an image message.
func (s *MessageService) Send(ctx context.Context, from string, req models.SendMessageRequest) (*models.Message, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && req.MediaURL == "" {
		return nil, ErrEmptyMessage
	}

	msg := &models.Message{
		ID:          uuid.NewString(),
		FromUserID:  from,
		ToUserID:    req.ToUserID,
		Text:        req.Text,
		MediaURL:    req.MediaURL,
		MessageType: models.MessageTypeText,
		CreatedAt:   s.now().UTC(),
	}
	if req.MediaURL != "" {
		msg.MessageType = models.MessageTypeImage
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyMessage(msg)
	}
	return msg, nil
}

// Conversation returns the messages between userID and peerID, oldest
// first, and marks the peer's messages to userID as seen.
func (s *MessageService) Conversation(ctx context.Context, userID, peerID string) ([]models.Message, error) {
	msgs, err := s.messages.Conversation(ctx, userID, peerID)
	if err != nil {
		return nil, err
	}
	if err := s.messages.MarkSeen(ctx, peerID, userID); err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}
