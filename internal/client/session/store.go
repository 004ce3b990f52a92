// Package session keeps the signed-in user's tokens in a local SQLite file so
// the client survives restarts without asking for the password again.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/notekeeper/internal/client/session/migrations"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const (
	keyEmail        = "email"
	keyUserID       = "user_id"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// Session is what the client remembers between runs.
type Session struct {
	Email        string
	UserID       string
	AccessToken  string
	RefreshToken string
}

// Empty reports whether no user is signed in.
func (s *Session) Empty() bool {
	return s == nil || s.AccessToken == ""
}

// Store persists a Session as rows of the metadata key/value table.
type Store struct {
	db *sql.DB
}

// Open creates path's directory if needed, opens the database and applies
// the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create session dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("session migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the saved session. A store that was never written yields an
// empty Session, not an error.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM metadata`)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		values[key] = string(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate metadata rows: %w", err)
	}

	return &Session{
		Email:        values[keyEmail],
		UserID:       values[keyUserID],
		AccessToken:  values[keyAccessToken],
		RefreshToken: values[keyRefreshToken],
	}, nil
}

// Save replaces the stored session in one transaction.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, kv := range [][2]string{
			{keyEmail, sess.Email},
			{keyUserID, sess.UserID},
			{keyAccessToken, sess.AccessToken},
			{keyRefreshToken, sess.RefreshToken},
		} {
			if err := set(ctx, tx, kv[0], kv[1]); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveTokens updates only the token pair, e.g. after a refresh.
func (s *Store) SaveTokens(ctx context.Context, access, refresh string) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := set(ctx, tx, keyAccessToken, access); err != nil {
			return err
		}
		return set(ctx, tx, keyRefreshToken, refresh)
	})
}

// Clear forgets everything, e.g. on logout.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM metadata`); err != nil {
		return fmt.Errorf("failed to clear metadata: %w", err)
	}
	return nil
}

func set(ctx context.Context, db dbx.DBTX, key, value string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(value))
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}
