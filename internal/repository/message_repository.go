package repository

import (
	"context"

	"pingup/backend/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	// Conversation returns the messages exchanged between a and b, oldest first
	Conversation(ctx context.Context, a, b string) ([]models.Message, error)
	MarkSeen(ctx context.Context, from, to string) error
}

type GormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) Create(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *GormMessageRepository) Conversation(ctx context.Context, a, b string) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)", a, b, b, a).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

func (r *GormMessageRepository) MarkSeen(ctx context.Context, from, to string) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("from_user_id = ? AND to_user_id = ? AND seen = ?", from, to, false).
		Update("seen", true).Error
}
