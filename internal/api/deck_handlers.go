package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/models"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	log.Debug("listing decks")

	decks, err := s.ContentService.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	writeJSON(w, http.StatusOK, decks)
}

type createDeckRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.ContentService.CreateDeck(r.Context(), req.Name)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	deckID := chi.URLParam(r, "deckID")

	if err := s.ContentService.DeleteDeck(r.Context(), deckID); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
