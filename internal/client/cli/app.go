package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/client/config"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
)

// apiClient is the part of *api.Client the commands use.
type apiClient interface {
	Register(ctx context.Context, email, password string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*models.User, error)
	ListNotes(ctx context.Context) ([]models.Note, error)
	GetNote(ctx context.Context, id string) (*models.Note, error)
	CreateNote(ctx context.Context, title, content string) (*models.Note, error)
	SummarizeNote(ctx context.Context, id string) (*models.Note, error)
	DeleteNote(ctx context.Context, id string) (string, error)
	SetTokens(access, refresh string)
	OnRefresh(fn api.TokensFunc)
}

type sessionStore interface {
	Load(ctx context.Context) (*session.Session, error)
	Save(ctx context.Context, s *session.Session) error
	SaveTokens(ctx context.Context, access, refresh string) error
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	config *config.Config
	api    apiClient
	store  sessionStore
	reader *bufio.Reader
	out    io.Writer
	email  string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	store, err := session.Open(ctx, c.SessionFile)
	if err != nil {
		return nil, fmt.Errorf("error opening session store: %w", err)
	}

	client := api.New(c.ServerURL, &http.Client{Timeout: c.RequestTimeout})

	a := newApp(client, store, bufio.NewReader(os.Stdin), os.Stdout)
	a.config = c
	if err := a.restore(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return a, nil
}

func newApp(client apiClient, store sessionStore, r *bufio.Reader, w io.Writer) *App {
	a := &App{api: client, store: store, reader: r, out: w}
	client.OnRefresh(func(ctx context.Context, access, refresh string) {
		_ = a.store.SaveTokens(ctx, access, refresh)
	})
	return a
}

// restore picks up the session saved by a previous run.
func (a *App) restore(ctx context.Context) error {
	s, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if s.Empty() {
		return nil
	}
	a.email = s.Email
	a.api.SetTokens(s.AccessToken, s.RefreshToken)
	return nil
}

// Run blocks in the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.store.Close()

	a.println("notekeeper client (type 'help' for commands)")
	if a.isLoggedIn() {
		a.println("Signed in as " + a.email)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.email != ""
}

func (a *App) getStatus() string {
	if a.email == "" {
		return ""
	}
	return "(" + a.email + ")"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
