package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/mkaradima/support-chat-backend/internal/config"
	"github.com/mkaradima/support-chat-backend/internal/domain"
	"github.com/mkaradima/support-chat-backend/internal/llm"
	"github.com/mkaradima/support-chat-backend/internal/repository"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrEmptyMessage   = errors.New("no message provided")
	ErrNoConversation = errors.New("no previous session found")
)

type ChatService struct {
	messageRepo repository.ChatMessageRepository
	sessionRepo repository.SessionRepository
	completions llm.Client
	cfg         *config.Config
}

func NewChatService(messageRepo repository.ChatMessageRepository, sessionRepo repository.SessionRepository, completions llm.Client, cfg *config.Config) *ChatService {
	return &ChatService{
		messageRepo: messageRepo,
		sessionRepo: sessionRepo,
		completions: completions,
		cfg:         cfg,
	}
}

// DisplayMessage is one line of a rendered conversation transcript.
type DisplayMessage struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

// Conversation is a whole session's transcript, two display lines per stored
// chat turn.
type Conversation struct {
	SessionID uint             `json:"session_id"`
	Messages  []DisplayMessage `json:"messages"`
}

// PostMessage runs one chat turn: load recent context, ask the completion
// API, persist the exchange. Nothing is persisted when the provider fails.
func (s *ChatService) PostMessage(ctx context.Context, userID uint, text string) (*domain.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	// The turn is attached to whichever session is currently open; posting
	// without one is allowed and leaves session_id NULL.
	var sessionID *uint
	if session, err := s.sessionRepo.GetActiveByUserID(ctx, userID); err == nil {
		sessionID = &session.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	recent, err := s.messageRepo.GetRecentByUserID(ctx, userID, s.cfg.ContextMessages)
	if err != nil {
		return nil, err
	}

	history := buildHistory(recent, userID)

	response, err := s.completions.Complete(ctx, history, text)
	if err != nil {
		return nil, err
	}

	requestData, _ := json.Marshal(map[string]interface{}{
		"model":            s.cfg.ChatModel,
		"context_messages": len(history),
		"message":          text,
	})
	responseData, _ := json.Marshal(map[string]string{"text": response})

	msg := &domain.ChatMessage{
		UserID:       userID,
		SessionID:    sessionID,
		Message:      text,
		Response:     response,
		RequestData:  datatypes.JSON(requestData),
		ResponseData: datatypes.JSON(responseData),
		Timestamp:    time.Now().UTC(),
	}

	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// ContinueLastConversation loads the transcript of the session the user's
// newest message belongs to, oldest turn first.
func (s *ChatService) ContinueLastConversation(ctx context.Context, userID uint) (*Conversation, error) {
	sessionID, found, err := s.messageRepo.GetLastSessionID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found || sessionID == nil {
		return nil, ErrNoConversation
	}

	session, err := s.sessionRepo.GetByID(ctx, *sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoConversation
		}
		return nil, err
	}

	messages, err := s.messageRepo.GetBySessionID(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	conv := &Conversation{SessionID: session.ID, Messages: []DisplayMessage{}}
	for _, msg := range messages {
		conv.Messages = append(conv.Messages,
			DisplayMessage{Sender: "user", Text: msg.Message},
			DisplayMessage{Sender: "bot", Text: msg.Response},
		)
	}

	return conv, nil
}

// buildHistory converts stored turns, newest first on input, into the
// oldest-first message list sent to the completion API. A turn authored by
// the requesting user carries the user role; anything else is treated as the
// assistant speaking. Every stored turn belongs to the requesting user, so
// in practice the history is all user-role turns; clients depend on the
// resulting prompts, so the mapping stays as-is.
func buildHistory(recent []*domain.ChatMessage, userID uint) []llm.Message {
	history := make([]llm.Message, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		msg := recent[i]

		role := llm.RoleAssistant
		if msg.UserID == userID {
			role = llm.RoleUser
		}

		content := msg.Message
		if content == "" {
			content = msg.Response
		}

		history = append(history, llm.Message{Role: role, Content: content})
	}
	return history
}
