package models

import "time"

// RefreshToken is a stored refresh token of the local auth provider. Only the
// SHA-256 digest of the opaque token reaches the store.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is no longer usable at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
