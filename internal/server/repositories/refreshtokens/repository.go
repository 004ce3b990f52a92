// Package refreshtokens stores the opaque refresh tokens issued by the local
// auth provider. Tokens are looked up by their SHA-256 digest, see Hash.
package refreshtokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

type Repository interface {
	// Create stores token for userID, expiring at now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns common.ErrorNotFound when the token is unknown.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Consume removes token and returns common.ErrorNotFound when it was
	// already gone, so a token can be rotated only once.
	Consume(ctx context.Context, token string) error

	// DeleteByUser revokes every token of userID and reports how many were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)
}

// Hash returns the hex SHA-256 digest under which token is stored.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
