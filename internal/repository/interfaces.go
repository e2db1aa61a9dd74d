package repository

import (
	"context"

	"github.com/mkaradima/support-chat-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetAll(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	// Delete removes the user together with all of their sessions and chat
	// messages in a single transaction.
	Delete(ctx context.Context, id uint) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByID(ctx context.Context, id uint) (*domain.UserSession, error)
	// GetActiveByUserID returns the most recently started session whose
	// ended_at is still NULL.
	GetActiveByUserID(ctx context.Context, userID uint) (*domain.UserSession, error)
	Update(ctx context.Context, session *domain.UserSession) error
	DeleteByUserID(ctx context.Context, userID uint) error
}

type ChatMessageRepository interface {
	Create(ctx context.Context, msg *domain.ChatMessage) error
	// GetRecentByUserID returns up to limit messages, newest first.
	GetRecentByUserID(ctx context.Context, userID uint, limit int) ([]*domain.ChatMessage, error)
	// GetLastSessionID returns the session id of the user's newest message.
	// The id can be nil when the newest message was posted outside a session.
	GetLastSessionID(ctx context.Context, userID uint) (*uint, bool, error)
	GetBySessionID(ctx context.Context, sessionID uint) ([]*domain.ChatMessage, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}

type Repositories struct {
	User        UserRepository
	Session     SessionRepository
	ChatMessage ChatMessageRepository
}
