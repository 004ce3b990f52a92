// Package models defines server-side data models persisted in the database.
package models

import "time"

// Note is a short text record owned by exactly one user. Title and Content
// never change after creation; Summary is nil until a summary is stored.
type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}
