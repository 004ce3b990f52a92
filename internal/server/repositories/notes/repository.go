// Package notes declares the owner-scoped note store and its PostgreSQL and
// in-memory implementations.
package notes

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository persists notes. Every lookup, update and delete is filtered by
// owner, so a note of another user behaves exactly like a missing one.
type Repository interface {
	// List returns the owner's notes, newest first. No notes is not an error.
	List(ctx context.Context, owner string) ([]*models.Note, error)

	// Get returns common.ErrorNotFound when no note with id belongs to owner.
	Get(ctx context.Context, owner, id string) (*models.Note, error)

	// Create stores n and fills in the store-assigned ID and CreatedAt.
	Create(ctx context.Context, n *models.Note) (*models.Note, error)

	// UpdateSummary overwrites the summary and returns the updated note, or
	// common.ErrorNotFound.
	UpdateSummary(ctx context.Context, owner, id, summary string) (*models.Note, error)

	// Delete removes the note if owner has it. Deleting a missing note is not
	// an error.
	Delete(ctx context.Context, owner, id string) error
}
