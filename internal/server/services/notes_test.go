package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/summarizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

type fakeSummarizer struct {
	summarizer.Summarizer
	calls atomic.Int32
	res   summarizer.Result
}

func (f *fakeSummarizer) SummarizeDetailed(context.Context, string) summarizer.Result {
	f.calls.Add(1)
	return f.res
}

type failingNotes struct {
	notes.Repository
	err error
}

func (f failingNotes) List(context.Context, string) ([]*models.Note, error) { return nil, f.err }
func (f failingNotes) Create(context.Context, *models.Note) (*models.Note, error) {
	return nil, f.err
}
func (f failingNotes) Delete(context.Context, string, string) error { return f.err }

type fakeRepoManager struct {
	repomanager.RepositoryManager
	notes notes.Repository
}

func (m *fakeRepoManager) Notes(dbx.DBTX) notes.Repository { return m.notes }

func newService(t *testing.T, sum summarizer.Summarizer) (*NoteService, *repomanager.MemoryRepositoryManager) {
	t.Helper()
	m := repomanager.NewMemoryRepositoryManager()
	return NewNoteService(nil, m, sum, nil), m
}

func TestCreateThenGet(t *testing.T) {
	ctx := context.Background()
	sum := &fakeSummarizer{res: summarizer.Result{Text: "Basic groceries.", Generated: true}}
	s, _ := newService(t, sum)

	created, err := s.Create(ctx, "alice", "Groceries", "milk, eggs, bread")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "alice", created.UserID)
	require.NotNil(t, created.Summary)
	assert.Equal(t, "Basic groceries.", *created.Summary)

	got, err := s.Get(ctx, "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, "milk, eggs, bread", got.Content)
	require.NotNil(t, got.Summary)
}

func TestCreate_PlaceholderSummaryStillStores(t *testing.T) {
	ctx := context.Background()
	sum := &fakeSummarizer{res: summarizer.Result{Text: summarizer.FailedSummary}}
	s, _ := newService(t, sum)

	created, err := s.Create(ctx, "alice", "t", "c")
	require.NoError(t, err)
	assert.Equal(t, summarizer.FailedSummary, *created.Summary)
}

func TestCreate_StoresValuesAsGiven(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t, &fakeSummarizer{res: summarizer.Result{Text: "s"}})

	created, err := s.Create(ctx, "alice", "  padded title ", "content\n")
	require.NoError(t, err)
	assert.Equal(t, "  padded title ", created.Title)
	assert.Equal(t, "content\n", created.Content)

	blank, err := s.Create(ctx, "alice", "   ", " ")
	require.NoError(t, err)
	assert.Equal(t, "   ", blank.Title)
	assert.Equal(t, " ", blank.Content)
}

func TestCreate_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
	}{
		{name: "empty title", title: "", content: "c"},
		{name: "empty content", title: "t", content: ""},
		{name: "both missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			sum := &fakeSummarizer{}
			s, m := newService(t, sum)

			_, err := s.Create(ctx, "alice", tt.title, tt.content)
			assert.ErrorIs(t, err, common.ErrorInvalidInput)
			assert.Equal(t, int32(0), sum.calls.Load())

			list, err := m.Notes(nil).List(ctx, "alice")
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestDeleteThenGetIsNotFound(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t, &fakeSummarizer{res: summarizer.Result{Text: "s"}})

	n, err := s.Create(ctx, "alice", "t", "c")
	require.NoError(t, err)

	id, err := s.Delete(ctx, "alice", n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, id)

	_, err = s.Get(ctx, "alice", n.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	// deleting again is still fine
	id, err = s.Delete(ctx, "alice", n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, id)
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	sum := &fakeSummarizer{res: summarizer.Result{Text: "s", Generated: true}}
	s, _ := newService(t, sum)

	n, err := s.Create(ctx, "alice", "diary", "private")
	require.NoError(t, err)

	_, err = s.Get(ctx, "bob", n.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	before := sum.calls.Load()
	_, err = s.Summarize(ctx, "bob", n.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, before, sum.calls.Load(), "no summarization for foreign notes")

	_, err = s.Delete(ctx, "bob", n.ID)
	require.NoError(t, err)

	list, err := s.List(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, list)

	got, err := s.Get(ctx, "alice", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "private", got.Content)
}

func TestSummarizeRepeatedly(t *testing.T) {
	ctx := context.Background()
	sum := &fakeSummarizer{res: summarizer.Result{Text: "first"}}
	s, _ := newService(t, sum)

	n, err := s.Create(ctx, "alice", "t", "c")
	require.NoError(t, err)

	for _, want := range []string{"second", "third"} {
		sum.res = summarizer.Result{Text: want, Generated: true}
		updated, err := s.Summarize(ctx, "alice", n.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.Summary)
		assert.Equal(t, want, *updated.Summary)
	}

	got, err := s.Get(ctx, "alice", n.ID)
	require.NoError(t, err)
	assert.Equal(t, "third", *got.Summary)
}

func TestSummarize_UnknownID(t *testing.T) {
	s, _ := newService(t, &fakeSummarizer{})

	_, err := s.Summarize(context.Background(), "alice", "unknown-id")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t, &fakeSummarizer{res: summarizer.Result{Text: "s"}})

	for _, title := range []string{"a", "b", "c"} {
		_, err := s.Create(ctx, "alice", title, "x")
		require.NoError(t, err)
	}

	list, err := s.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
	}
	assert.Equal(t, "c", list[0].Title)
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("db down")
	m := &fakeRepoManager{notes: failingNotes{err: boom}}
	s := NewNoteService(nil, m, &fakeSummarizer{res: summarizer.Result{Text: "s"}}, nil)

	_, err := s.List(ctx, "alice")
	assert.ErrorIs(t, err, boom)

	_, err = s.Create(ctx, "alice", "t", "c")
	assert.ErrorIs(t, err, boom)

	_, err = s.Delete(ctx, "alice", "n1")
	assert.ErrorIs(t, err, boom)
}
