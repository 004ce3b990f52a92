// Package repomanager vends repository implementations for the configured
// backend and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

// RepositoryManager binds repositories to a DBTX. Memory-backed managers
// ignore the handle they are given.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	WithTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context, tx dbx.DBTX) error) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notes(db dbx.DBTX) notes.Repository
}

// Open picks the backend for dsn. config.MemoryDSN yields a memory manager
// and a nil *sql.DB; anything else is handed to the pgx driver. sql.Open does
// not dial, so an unreachable database only surfaces on first use.
func Open(dsn string) (*sql.DB, RepositoryManager, error) {
	if strings.TrimSpace(dsn) == config.MemoryDSN {
		return nil, NewMemoryRepositoryManager(), nil
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	return db, NewPostgresRepositoryManager(), nil
}
