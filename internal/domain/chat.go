package domain

import (
	"time"

	"gorm.io/datatypes"
)

// ChatMessage is one chat turn: the user's text and the model's reply.
// Rows are append-only; they are removed only when the owning user is
// deleted. SessionID is nullable because a turn can be posted while no
// login session is open.
type ChatMessage struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UserID       uint           `json:"user_id" gorm:"not null;index"`
	SessionID    *uint          `json:"session_id" gorm:"index"`
	Message      string         `json:"message" gorm:"type:text;not null"`
	Response     string         `json:"response" gorm:"type:text"`
	RequestData  datatypes.JSON `json:"request_data,omitempty"`
	ResponseData datatypes.JSON `json:"response_data,omitempty"`
	Timestamp    time.Time      `json:"timestamp" gorm:"not null;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
