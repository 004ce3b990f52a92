// Package services contains server-side business logic. NoteService runs the
// note lifecycle; every operation is scoped to the calling user.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/summarizer"
)

// NoteService lists, reads, creates, summarizes and deletes notes of one
// owner at a time. It holds no per-request state and is safe for concurrent
// use.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	summarizer  summarizer.Summarizer
	logger      logging.Logger
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager, s summarizer.Summarizer, logger logging.Logger) *NoteService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &NoteService{
		db:          db,
		repomanager: m,
		summarizer:  s,
		logger:      logger.With("module", "note_service"),
	}
}

func (s *NoteService) repo() notes.Repository {
	return s.repomanager.Notes(s.db)
}

// List returns the owner's notes, newest first.
func (s *NoteService) List(ctx context.Context, owner string) ([]*models.Note, error) {
	list, err := s.repo().List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	return list, nil
}

// Get returns common.ErrorNotFound for missing notes and for notes of other
// users alike.
func (s *NoteService) Get(ctx context.Context, owner, id string) (*models.Note, error) {
	n, err := s.repo().Get(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("error getting note: %w", err)
	}
	return n, nil
}

// Create summarizes content and stores the note with whatever the summarizer
// returned, placeholder included. Empty title or content is
// common.ErrorInvalidInput and stores nothing.
func (s *NoteService) Create(ctx context.Context, owner, title, content string) (*models.Note, error) {
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", common.ErrorInvalidInput)
	}

	res := s.summarizer.SummarizeDetailed(ctx, content)
	s.logger.Info(ctx, "creating note", "owner", owner, "summarized", res.Generated)

	summary := res.Text
	n, err := s.repo().Create(ctx, &models.Note{
		UserID:  owner,
		Title:   title,
		Content: content,
		Summary: &summary,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}

	s.logger.Info(ctx, "note created", "note_id", n.ID, "owner", owner)
	return n, nil
}

// Summarize recomputes and overwrites the summary. Concurrent calls on the
// same note race; the last write wins.
func (s *NoteService) Summarize(ctx context.Context, owner, id string) (*models.Note, error) {
	n, err := s.repo().Get(ctx, owner, id)
	if err != nil {
		return nil, fmt.Errorf("error getting note: %w", err)
	}

	res := s.summarizer.SummarizeDetailed(ctx, n.Content)
	s.logger.Info(ctx, "note summarized", "note_id", id, "summarized", res.Generated)

	updated, err := s.repo().UpdateSummary(ctx, owner, id, res.Text)
	if err != nil {
		return nil, fmt.Errorf("error updating summary: %w", err)
	}
	return updated, nil
}

// Delete removes the note and echoes id back. A missing note, or one owned by
// someone else, is not an error.
func (s *NoteService) Delete(ctx context.Context, owner, id string) (string, error) {
	if err := s.repo().Delete(ctx, owner, id); err != nil {
		return "", fmt.Errorf("error deleting note: %w", err)
	}
	return id, nil
}
