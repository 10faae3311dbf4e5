package models

import "time"

// Session represents an authenticated login session
type Session struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Never expose in JSON
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}

// LoginRequest represents the request body for login.
// The identifier field accepts either an email address or a university ID.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
