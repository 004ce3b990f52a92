// Package auth verifies credentials and bearer tokens. Provider is
// implemented by LocalProvider (users table, bcrypt, HS256 tokens) and
// SupabaseProvider (hosted GoTrue API).
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// MinPasswordLength is enforced by LocalProvider on registration.
const MinPasswordLength = 6

var (
	ErrEmailTaken         = errors.New("user already registered")
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrWeakPassword       = errors.New("password should be at least 6 characters")
	ErrInvalidEmail       = errors.New("unable to validate email address: invalid format")
)

// Identity is the authenticated caller.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the token pair handed to clients after sign-in.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
}

type AuthResult struct {
	User    Identity `json:"user"`
	Session *Session `json:"session"`
}

// Provider is the credential verifier used by the HTTP layer.
type Provider interface {
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Verify resolves a bearer token to its owner.
	Verify(ctx context.Context, token string) (*Identity, error)
	// Refresh exchanges a refresh token for a new session.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout ends the sessions of the token's user. An empty token is a no-op.
	Logout(ctx context.Context, accessToken string) error
}

// Error is a rejection reported by the identity service. Its message is
// meant for the end user.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// IsInternal reports whether err is an infrastructure failure rather than a
// rejection of the caller's input.
func IsInternal(err error) bool {
	return errors.Is(err, common.ErrorInternal)
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", common.ErrorInternal, err)
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, password string) (string, error) {
	email = NormalizeEmail(email)
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return "", ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	return email, nil
}
