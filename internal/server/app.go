// Package server wires notekeeper together: storage, the auth provider, the
// summarizer, the REST API and the gRPC health endpoint. It also handles
// signals and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"
	"github.com/dmitrijs2005/notekeeper/internal/server/summarizer"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

const migrationTimeout = 30 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	auth        auth.Provider
	noteService *services.NoteService
}

// NewApp opens storage and builds the services. Missing credentials and
// failed migrations are logged; only an unusable DSN is an error.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stdout)

	for _, w := range c.Warnings() {
		logger.Warn(ctx, w)
	}

	db, m, err := repomanager.Open(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := runMigrations(ctx, m, db); err != nil {
		logger.Warn(ctx, "migrations failed; data operations may fail", "error", err)
	}

	app := &App{
		config:      c,
		logger:      logger,
		db:          db,
		repomanager: m,
	}

	app.auth = app.newAuthProvider()
	sum := summarizer.New(ctx, c, logger)
	app.noteService = services.NewNoteService(db, m, sum, logger)

	return app, nil
}

func runMigrations(ctx context.Context, m repomanager.RepositoryManager, db *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, migrationTimeout)
	defer cancel()
	return m.RunMigrations(ctx, db)
}

func (app *App) newAuthProvider() auth.Provider {
	if app.config.AuthProvider == config.AuthProviderSupabase {
		return auth.NewSupabaseProvider(app.config.SupabaseURL, app.config.SupabaseKey, &http.Client{Timeout: 15 * time.Second})
	}
	return auth.NewLocalProvider(app.db, app.repomanager, app.config)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.logger, app.auth, app.noteService, app.config.CORSOrigin)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewHealthServer(app.config.EndpointAddrGRPC, app.logger)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled or a signal arrives, then waits for both
// servers to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "auth_provider", app.config.AuthProvider, "ai_provider", app.config.AIProvider)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "closing database", "error", err)
		}
	}

	app.logger.Info(ctx, "App stopped")
}
