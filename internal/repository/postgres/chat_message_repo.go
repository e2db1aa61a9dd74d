package postgres

import (
	"context"
	"errors"

	"github.com/mkaradima/support-chat-backend/internal/domain"
	"gorm.io/gorm"
)

type chatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) *chatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Create(ctx context.Context, msg *domain.ChatMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *chatMessageRepository) GetRecentByUserID(ctx context.Context, userID uint, limit int) ([]*domain.ChatMessage, error) {
	var messages []*domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// GetLastSessionID reports the session id of the user's newest message across
// all sessions. The second return value is false when the user has no
// messages at all; the id itself can still be nil for a message that was
// posted without an open session.
func (r *chatMessageRepository) GetLastSessionID(ctx context.Context, userID uint) (*uint, bool, error) {
	var msg domain.ChatMessage
	err := r.db.WithContext(ctx).
		Select("session_id").
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return msg.SessionID, true, nil
}

func (r *chatMessageRepository) GetBySessionID(ctx context.Context, sessionID uint) ([]*domain.ChatMessage, error) {
	var messages []*domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *chatMessageRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Delete(&domain.ChatMessage{}, "user_id = ?", userID).Error
}
