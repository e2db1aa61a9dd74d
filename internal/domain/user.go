package domain

import (
	"time"
)

// User holds the authentication identity for one account. The password is
// write-only: only the auth service's hashing paths touch the digest, and the
// digest is excluded from every JSON payload.
type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"uniqueIndex;not null"`
	Email        string `json:"email" gorm:"not null"`
	PasswordHash string `json:"-" gorm:"not null"`
}

func (User) TableName() string {
	return "user_auth"
}

// UserSession is one login-to-logout interval. EndedAt stays NULL while the
// session is open. By convention at most one open session exists per user;
// the storage layer does not enforce that, so callers always query for the
// most recently started open row.
type UserSession struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;index"`
	StartedAt time.Time  `json:"started_at" gorm:"not null"`
	EndedAt   *time.Time `json:"ended_at"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}
