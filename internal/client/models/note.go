// Package models holds the JSON shapes the client exchanges with the notes
// API.
package models

import "time"

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// SummaryText returns the summary or "" when the note has none.
func (n *Note) SummaryText() string {
	if n.Summary == nil {
		return ""
	}
	return *n.Summary
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}

// AuthResult is returned by register, login and refresh.
type AuthResult struct {
	User    User     `json:"user"`
	Session *Session `json:"session"`
}
