package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/template"
)

type createNoteRequest struct {
	Template string            `json:"template"`
	Fields   map[string]string `json:"fields"`
}

type noteWithCardsResponse struct {
	Note  *models.Note  `json:"note"`
	Cards []models.Card `json:"cards"`
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	note, cards, err := s.ContentService.CreateNote(r.Context(), deckID, req.Template, req.Fields)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, noteWithCardsResponse{Note: note, Cards: cards})
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	notes, err := s.ContentService.ListNotes(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (s *Server) handleReadNote(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	noteID := chi.URLParam(r, "noteID")

	note, err := s.ContentService.ReadNote(r.Context(), deckID, noteID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

type updateNoteRequest struct {
	Fields map[string]string `json:"fields"`
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	noteID := chi.URLParam(r, "noteID")

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	note, err := s.ContentService.UpdateNote(r.Context(), deckID, noteID, req.Fields)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")
	noteID := chi.URLParam(r, "noteID")

	if err := s.ContentService.DeleteNote(r.Context(), deckID, noteID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	cards, err := s.ContentService.ListCards(r.Context(), deckID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if cards == nil {
		cards = []models.CardSummary{}
	}
	writeJSON(w, http.StatusOK, cards)
}

type previewNoteRequest struct {
	Template string            `json:"template"`
	Fields   map[string]string `json:"fields"`
	CardNum  int               `json:"card_num"`
}

type previewNoteResponse struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// handlePreviewNote renders a card from unsaved note fields so a client can
// show what a note will look like before creating it.
func (s *Server) handlePreviewNote(w http.ResponseWriter, r *http.Request) {
	var req previewNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	name := req.Template
	if name == "" {
		name = template.Default
	}
	if err := template.Validate(name, req.Fields); err != nil {
		handleError(w, r, err)
		return
	}
	front, back, err := template.Render(name, req.Fields, req.CardNum)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, previewNoteResponse{Front: front, Back: back})
}
