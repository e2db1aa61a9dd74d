package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkaradima/support-chat-backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", suffix),
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		password: "testpassword123",
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Username:     b.username,
		Email:        b.email,
		PasswordHash: string(hashedPassword),
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// RegisterResponse matches the API registration response
type RegisterResponse struct {
	Message   string `json:"message"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	SessionID uint   `json:"session_id"`
}

// BuildAndAuthenticate registers the user via the API and returns the user
// plus an HTTP client whose jar holds the session cookie.
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (*domain.User, *http.Client) {
	t.Helper()

	client := ts.NewClient(t)

	reqBody := map[string]string{
		"username": b.username,
		"email":    b.email,
		"password": b.password,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := client.Post(ts.APIURL("/user_auth"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var regResp RegisterResponse
	if err := json.NewDecoder(resp.Body).Decode(&regResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	user := &domain.User{
		ID:       regResp.ID,
		Username: regResp.Username,
		Email:    regResp.Email,
	}

	return user, client
}

// SessionBuilder creates login sessions directly in the database
type SessionBuilder struct {
	userID    uint
	startedAt time.Time
	endedAt   *time.Time
}

func NewSessionBuilder(userID uint) *SessionBuilder {
	return &SessionBuilder{
		userID:    userID,
		startedAt: time.Now().UTC(),
	}
}

func (b *SessionBuilder) StartedAt(at time.Time) *SessionBuilder {
	b.startedAt = at
	return b
}

func (b *SessionBuilder) Ended(at time.Time) *SessionBuilder {
	b.endedAt = &at
	return b
}

func (b *SessionBuilder) Build(t *testing.T, db *gorm.DB) *domain.UserSession {
	t.Helper()

	session := &domain.UserSession{
		UserID:    b.userID,
		StartedAt: b.startedAt,
		EndedAt:   b.endedAt,
	}

	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	return session
}

// MessageBuilder creates chat messages directly in the database
type MessageBuilder struct {
	userID    uint
	sessionID *uint
	message   string
	response  string
	timestamp time.Time
}

func NewMessageBuilder(userID uint) *MessageBuilder {
	return &MessageBuilder{
		userID:    userID,
		message:   "test message",
		response:  "test response",
		timestamp: time.Now().UTC(),
	}
}

func (b *MessageBuilder) InSession(sessionID uint) *MessageBuilder {
	b.sessionID = &sessionID
	return b
}

func (b *MessageBuilder) WithText(message, response string) *MessageBuilder {
	b.message = message
	b.response = response
	return b
}

func (b *MessageBuilder) At(timestamp time.Time) *MessageBuilder {
	b.timestamp = timestamp
	return b
}

func (b *MessageBuilder) Build(t *testing.T, db *gorm.DB) *domain.ChatMessage {
	t.Helper()

	msg := &domain.ChatMessage{
		UserID:    b.userID,
		SessionID: b.sessionID,
		Message:   b.message,
		Response:  b.response,
		Timestamp: b.timestamp,
	}

	if err := db.Create(msg).Error; err != nil {
		t.Fatalf("failed to create chat message: %v", err)
	}

	return msg
}
