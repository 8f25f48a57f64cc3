package models

import (
	"time"
)

// MessageType distinguishes plain text from media messages
type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

// Message is a direct message between two users. Immutable once created,
// apart from the seen flag.
type Message struct {
	ID          string      `json:"_id" gorm:"primaryKey;type:varchar(36)"`
	FromUserID  string      `json:"from_user_id" gorm:"index:idx_messages_pair,priority:1;not null"`
	ToUserID    string      `json:"to_user_id" gorm:"index:idx_messages_pair,priority:2;not null"`
	Text        string      `json:"text"`
	MediaURL    string      `json:"media_url,omitempty"`
	MessageType MessageType `json:"message_type" gorm:"type:varchar(16);default:text"`
	Seen        bool        `json:"seen" gorm:"default:false"`
	CreatedAt   time.Time   `json:"createdAt" gorm:"index"`
}

// SendMessageRequest is the body of POST /api/message/send
type SendMessageRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Text     string `json:"text"`
	MediaURL string `json:"media_url"`
}

// ConversationRequest is the body of POST /api/message/get
type ConversationRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
}
