package notes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps notes in process memory. It is safe for concurrent
// use and returns copies, so callers cannot mutate stored notes.
type MemoryRepository struct {
	mu    sync.RWMutex
	notes map[string]*memoryNote
	seq   uint64
	now   func() time.Time
}

type memoryNote struct {
	note models.Note
	seq  uint64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		notes: make(map[string]*memoryNote),
		now:   time.Now,
	}
}

func (r *MemoryRepository) List(_ context.Context, owner string) ([]*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]*memoryNote, 0)
	for _, m := range r.notes {
		if m.note.UserID == owner {
			owned = append(owned, m)
		}
	}

	// Insertion order breaks ties between equal timestamps.
	sort.Slice(owned, func(i, j int) bool {
		a, b := owned[i], owned[j]
		if !a.note.CreatedAt.Equal(b.note.CreatedAt) {
			return a.note.CreatedAt.After(b.note.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*models.Note, 0, len(owned))
	for _, m := range owned {
		result = append(result, clone(&m.note))
	}
	return result, nil
}

func (r *MemoryRepository) Get(_ context.Context, owner, id string) (*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.notes[id]
	if !ok || m.note.UserID != owner {
		return nil, common.ErrorNotFound
	}
	return clone(&m.note), nil
}

func (r *MemoryRepository) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = uuid.NewString()
	n.CreatedAt = r.now().UTC()

	r.seq++
	r.notes[n.ID] = &memoryNote{note: *clone(n), seq: r.seq}

	return n, nil
}

func (r *MemoryRepository) UpdateSummary(_ context.Context, owner, id, summary string) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.notes[id]
	if !ok || m.note.UserID != owner {
		return nil, common.ErrorNotFound
	}
	m.note.Summary = &summary
	return clone(&m.note), nil
}

func (r *MemoryRepository) Delete(_ context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.notes[id]; ok && m.note.UserID == owner {
		delete(r.notes, id)
	}
	return nil
}

func clone(n *models.Note) *models.Note {
	c := *n
	if n.Summary != nil {
		s := *n.Summary
		c.Summary = &s
	}
	return &c
}
