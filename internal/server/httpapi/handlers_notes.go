package httpapi

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

const msgNoteNotFound = "Note not found"

type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (c *createNoteRequest) fromForm(v url.Values) {
	c.Title = v.Get("title")
	c.Content = v.Get("content")
}

type deleteNoteResponse struct {
	ID string `json:"id"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	owner := IdentityFrom(r.Context()).ID

	list, err := s.notes.List(r.Context(), owner)
	if err != nil {
		s.writeNoteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	owner := IdentityFrom(r.Context()).ID

	n, err := s.notes.Get(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.writeNoteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	owner := IdentityFrom(r.Context()).ID

	var req createNoteRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	n, err := s.notes.Create(r.Context(), owner, req.Title, req.Content)
	if err != nil {
		s.writeNoteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleSummarizeNote(w http.ResponseWriter, r *http.Request) {
	owner := IdentityFrom(r.Context()).ID

	n, err := s.notes.Summarize(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.writeNoteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	owner := IdentityFrom(r.Context()).ID

	id, err := s.notes.Delete(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		s.writeNoteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteNoteResponse{ID: id})
}

func (s *Server) writeNoteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorInvalidInput):
		writeMessage(w, http.StatusBadRequest, msgMissingFields)
	case errors.Is(err, common.ErrorNotFound):
		writeMessage(w, http.StatusNotFound, msgNoteNotFound)
	default:
		s.logError(r, "note operation failed", "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
	}
}
