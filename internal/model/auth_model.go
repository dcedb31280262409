package model

import "time"

type User struct {
	UserID       int64      `json:"user_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"` // never JSON-encode
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
