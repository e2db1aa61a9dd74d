package service

import (
	"github.com/mkaradima/support-chat-backend/internal/config"
	"github.com/mkaradima/support-chat-backend/internal/llm"
	"github.com/mkaradima/support-chat-backend/internal/repository"
)

type Services struct {
	Auth *AuthService
	Chat *ChatService
}

func NewServices(repos *repository.Repositories, completions llm.Client, cfg *config.Config) *Services {
	return &Services{
		Auth: NewAuthService(repos.User, repos.Session, cfg),
		Chat: NewChatService(repos.ChatMessage, repos.Session, completions, cfg),
	}
}
