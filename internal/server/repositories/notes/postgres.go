package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx). Ids that are not valid uuids are reported as absent.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	n := &models.Note{}
	var summary sql.NullString
	if err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &summary, &n.CreatedAt); err != nil {
		return nil, err
	}
	if summary.Valid {
		n.Summary = &summary.String
	}
	return n, nil
}

func (r *PostgresRepository) List(ctx context.Context, owner string) ([]*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, summary, created_at
		FROM notes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, owner, id string) (*models.Note, error) {
	query := `
		SELECT id, user_id, title, content, summary, created_at
		FROM notes
		WHERE id = $1 AND user_id = $2
	`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, id, owner))
	if err != nil {
		return nil, translate(err)
	}
	return n, nil
}

func (r *PostgresRepository) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	query := `
		INSERT INTO notes (user_id, title, content, summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	var summary sql.NullString
	if n.Summary != nil {
		summary = sql.NullString{String: *n.Summary, Valid: true}
	}

	if err := r.db.QueryRowContext(ctx, query, n.UserID, n.Title, n.Content, summary).Scan(&n.ID, &n.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateSummary(ctx context.Context, owner, id, summary string) (*models.Note, error) {
	query := `
		UPDATE notes SET summary = $1
		WHERE id = $2 AND user_id = $3
		RETURNING id, user_id, title, content, summary, created_at
	`
	n, err := scanNote(r.db.QueryRowContext(ctx, query, summary, id, owner))
	if err != nil {
		return nil, translate(err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, owner, id string) error {
	query := `
		DELETE FROM notes
		WHERE id = $1 AND user_id = $2
	`
	if _, err := r.db.ExecContext(ctx, query, id, owner); err != nil {
		if dbx.IsInvalidText(err) {
			return nil
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}
