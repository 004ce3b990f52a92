package models

import "time"

// User is an account of the local auth provider. PasswordHash holds a bcrypt
// hash and is never serialized.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
