// Package httpapi exposes the REST surface of notekeeper: the auth routes,
// which pass through to an auth.Provider, and the owner-scoped note routes
// guarded by requireAuth.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

const shutdownTimeout = 5 * time.Second

// NoteService is the note lifecycle the handlers drive. Every call is scoped
// to owner.
type NoteService interface {
	List(ctx context.Context, owner string) ([]*models.Note, error)
	Get(ctx context.Context, owner, id string) (*models.Note, error)
	Create(ctx context.Context, owner, title, content string) (*models.Note, error)
	Summarize(ctx context.Context, owner, id string) (*models.Note, error)
	Delete(ctx context.Context, owner, id string) (string, error)
}

type Server struct {
	address    string
	auth       auth.Provider
	notes      NoteService
	logger     logging.Logger
	corsOrigin string
}

func NewServer(address string, l logging.Logger, p auth.Provider, ns NoteService, corsOrigin string) *Server {
	if l == nil {
		l = logging.Nop{}
	}
	return &Server{
		address:    address,
		auth:       p,
		notes:      ns,
		logger:     l.With("module", "http_server"),
		corsOrigin: corsOrigin,
	}
}

// Handler returns the full middleware chain around the routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHealth)

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)
	mux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	mux.Handle("GET /api/auth/me", s.requireAuth(http.HandlerFunc(s.handleMe)))

	mux.Handle("GET /api/notes", s.requireAuth(http.HandlerFunc(s.handleListNotes)))
	mux.Handle("GET /api/notes/{$}", s.requireAuth(http.HandlerFunc(s.handleListNotes)))
	mux.Handle("POST /api/notes", s.requireAuth(http.HandlerFunc(s.handleCreateNote)))
	mux.Handle("POST /api/notes/{$}", s.requireAuth(http.HandlerFunc(s.handleCreateNote)))
	mux.Handle("GET /api/notes/{id}", s.requireAuth(http.HandlerFunc(s.handleGetNote)))
	mux.Handle("DELETE /api/notes/{id}", s.requireAuth(http.HandlerFunc(s.handleDeleteNote)))
	mux.Handle("POST /api/notes/{id}/summarize", s.requireAuth(http.HandlerFunc(s.handleSummarizeNote)))

	return s.recoverer(s.accessLog(s.cors(jsonFallback(mux))))
}

// jsonFallback serves mux, except that requests mux has no route for get the
// usual {"message": ...} body instead of its plain-text 404 and 405 pages.
func jsonFallback(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, pattern := mux.Handler(r)
		if pattern != "" {
			mux.ServeHTTP(w, r)
			return
		}

		rec := &headerRecorder{header: http.Header{}}
		h.ServeHTTP(rec, r)

		switch rec.code {
		case http.StatusNotFound:
			writeMessage(w, http.StatusNotFound, msgRouteNotFound)
		case http.StatusMethodNotAllowed:
			if allow := rec.header.Get("Allow"); allow != "" {
				w.Header().Set("Allow", allow)
			}
			writeMessage(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
		default:
			mux.ServeHTTP(w, r)
		}
	})
}

const (
	msgRouteNotFound    = "Not found"
	msgMethodNotAllowed = "Method not allowed"
)

// headerRecorder keeps the status and headers a handler writes and drops the body.
type headerRecorder struct {
	header http.Header
	code   int
}

func (r *headerRecorder) Header() http.Header { return r.header }

func (r *headerRecorder) WriteHeader(code int) {
	if r.code == 0 {
		r.code = code
	}
}

func (r *headerRecorder) Write(b []byte) (int, error) {
	r.WriteHeader(http.StatusOK)
	return len(b), nil
}

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to five seconds.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(listen)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "API is running..."})
}
