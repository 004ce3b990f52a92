package cli

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/client/api"
	"github.com/dmitrijs2005/notekeeper/internal/client/models"
	"github.com/dmitrijs2005/notekeeper/internal/client/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ------------ helpers ------------

type fakeAPI struct {
	access, refresh string
	onRefresh       api.TokensFunc

	loginErr  error
	listErr   error
	getErr    error
	logoutErr error

	notes   []models.Note
	created []string
	deleted []string
}

func (f *fakeAPI) Register(_ context.Context, email, _ string) (*models.AuthResult, error) {
	return f.Login(context.Background(), email, "")
}

func (f *fakeAPI) Login(_ context.Context, email, _ string) (*models.AuthResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &models.AuthResult{
		User:    models.User{ID: "u1", Email: email},
		Session: &models.Session{AccessToken: "at", RefreshToken: "rt"},
	}, nil
}

func (f *fakeAPI) Logout(context.Context) error { return f.logoutErr }
func (f *fakeAPI) Me(context.Context) (*models.User, error) {
	return &models.User{ID: "u1", Email: "a@b.c"}, nil
}
func (f *fakeAPI) ListNotes(context.Context) ([]models.Note, error) { return f.notes, f.listErr }
func (f *fakeAPI) GetNote(_ context.Context, id string) (*models.Note, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &models.Note{ID: id, Title: "t", Content: "c"}, nil
}
func (f *fakeAPI) CreateNote(_ context.Context, title, content string) (*models.Note, error) {
	f.created = append(f.created, title+"|"+content)
	s := "short summary"
	return &models.Note{ID: "n1", Title: title, Content: content, Summary: &s, CreatedAt: time.Now()}, nil
}
func (f *fakeAPI) SummarizeNote(_ context.Context, id string) (*models.Note, error) {
	s := "fresh summary"
	return &models.Note{ID: id, Summary: &s}, nil
}
func (f *fakeAPI) DeleteNote(_ context.Context, id string) (string, error) {
	f.deleted = append(f.deleted, id)
	return id, nil
}
func (f *fakeAPI) SetTokens(access, refresh string) { f.access, f.refresh = access, refresh }
func (f *fakeAPI) OnRefresh(fn api.TokensFunc)      { f.onRefresh = fn }

func readerFromLines(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func newTestApp(t *testing.T, f *fakeAPI, in *bufio.Reader) (*App, *session.Store, *bytes.Buffer) {
	t.Helper()

	oldTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = oldTerm })

	store, err := session.Open(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	return newApp(f, store, in, &out), store, &out
}

// ------------ tests ------------

func TestLogin_PersistsSession(t *testing.T) {
	f := &fakeAPI{}
	a, store, out := newTestApp(t, f, readerFromLines("a@b.c", "secret1"))
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	assert.True(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Signed in as a@b.c")

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", s.Email)
	assert.Equal(t, "at", s.AccessToken)
	assert.Equal(t, "rt", s.RefreshToken)
}

func TestLogin_FailureShowsServerMessage(t *testing.T) {
	f := &fakeAPI{loginErr: &api.Error{Status: http.StatusUnauthorized, Message: "invalid login credentials"}}
	a, _, out := newTestApp(t, f, readerFromLines("a@b.c", "nope"))

	require.Error(t, a.Login(context.Background()))
	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Login failed: invalid login credentials")
}

func TestRestore_UsesSavedSession(t *testing.T) {
	f := &fakeAPI{}
	a, store, _ := newTestApp(t, f, readerFromLines())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &session.Session{Email: "a@b.c", AccessToken: "saved-at", RefreshToken: "saved-rt"}))
	require.NoError(t, a.restore(ctx))

	assert.True(t, a.isLoggedIn())
	assert.Equal(t, "(a@b.c)", a.getStatus())
	assert.Equal(t, "saved-at", f.access)
	assert.Equal(t, "saved-rt", f.refresh)
}

func TestRefreshedTokensArePersisted(t *testing.T) {
	f := &fakeAPI{}
	_, store, _ := newTestApp(t, f, readerFromLines())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &session.Session{Email: "a@b.c", AccessToken: "old", RefreshToken: "old"}))
	require.NotNil(t, f.onRefresh)
	f.onRefresh(ctx, "new-at", "new-rt")

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new-at", s.AccessToken)
	assert.Equal(t, "a@b.c", s.Email)
}

func TestLogout_ClearsSessionEvenOnServerError(t *testing.T) {
	f := &fakeAPI{logoutErr: &api.Error{Status: http.StatusInternalServerError, Message: "down"}}
	a, store, _ := newTestApp(t, f, readerFromLines("a@b.c", "secret1"))
	ctx := context.Background()

	require.NoError(t, a.Login(ctx))
	require.Error(t, a.Logout(ctx))
	assert.False(t, a.isLoggedIn())

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestList_PrintsNotesWithAge(t *testing.T) {
	sum := "Buy basics."
	f := &fakeAPI{notes: []models.Note{
		{ID: "n2", Title: "Groceries", Summary: &sum, CreatedAt: time.Now().Add(-3 * time.Minute)},
		{ID: "n1", Title: "Old", CreatedAt: time.Now().Add(-48 * time.Hour)},
	}}
	a, _, out := newTestApp(t, f, readerFromLines())

	require.NoError(t, a.List(context.Background()))

	text := out.String()
	assert.Contains(t, text, "Groceries")
	assert.Contains(t, text, "3 minutes ago")
	assert.Contains(t, text, "Buy basics.")
	assert.Less(t, strings.Index(text, "Groceries"), strings.Index(text, "Old"))
}

func TestList_EmptyAndFailure(t *testing.T) {
	f := &fakeAPI{}
	a, _, out := newTestApp(t, f, readerFromLines())

	require.NoError(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "No notes yet")

	f.listErr = &api.Error{Status: http.StatusInternalServerError, Message: "db error"}
	require.Error(t, a.List(context.Background()))
	assert.Contains(t, out.String(), "Failed to load notes.")
}

func TestUnauthorized_EndsLocalSession(t *testing.T) {
	f := &fakeAPI{}
	a, store, out := newTestApp(t, f, readerFromLines("a@b.c", "secret1"))
	ctx := context.Background()
	require.NoError(t, a.Login(ctx))

	f.listErr = &api.Error{Status: http.StatusUnauthorized, Message: "Not authorized, token failed"}
	require.Error(t, a.List(ctx))

	assert.False(t, a.isLoggedIn())
	assert.Contains(t, out.String(), "Session expired")
	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestCreate(t *testing.T) {
	f := &fakeAPI{}
	a, _, out := newTestApp(t, f, readerFromLines("Groceries", "milk, eggs", "bread", ""))

	require.NoError(t, a.Create(context.Background()))
	assert.Equal(t, []string{"Groceries|milk, eggs\nbread"}, f.created)
	assert.Contains(t, out.String(), "Summary: short summary")
}

func TestCreate_RequiresFields(t *testing.T) {
	f := &fakeAPI{}
	a, _, out := newTestApp(t, f, readerFromLines("   ", "content", ""))

	require.NoError(t, a.Create(context.Background()))
	assert.Empty(t, f.created)
	assert.Contains(t, out.String(), "Title and content are required.")
}

func TestShow_NotFound(t *testing.T) {
	f := &fakeAPI{getErr: &api.Error{Status: http.StatusNotFound, Message: "Note not found"}}
	a, _, out := newTestApp(t, f, readerFromLines())

	require.Error(t, a.Show(context.Background(), "missing"))
	assert.Contains(t, out.String(), "Note not found.")
}

func TestSummarizeAndDelete(t *testing.T) {
	f := &fakeAPI{}
	a, _, out := newTestApp(t, f, readerFromLines())
	ctx := context.Background()

	require.NoError(t, a.Summarize(ctx, "n1"))
	assert.Contains(t, out.String(), "Summary: fresh summary")

	require.NoError(t, a.Delete(ctx, "n1"))
	assert.Equal(t, []string{"n1"}, f.deleted)
	assert.Contains(t, out.String(), "Note deleted.")
}
