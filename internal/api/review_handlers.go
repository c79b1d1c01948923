package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mcalder/deckard/internal/errors"
	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/models"
)

func (s *Server) handleListCardsToReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	deckID := chi.URLParam(r, "deckID")

	asOf := time.Now().UTC()
	if v := r.URL.Query().Get("as_of"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			handleError(w, r, errors.NewBadRequestError("invalid as_of timestamp"))
			return
		}
		asOf = t.UTC()
	}
	log.Debug("listing cards to review: deck_id=%s", deckID)

	cards, err := s.ReviewService.DueCards(r.Context(), deckID, asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

type reviewCardRequest struct {
	Grade string `json:"grade"`
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	deckID := chi.URLParam(r, "deckID")
	noteID := chi.URLParam(r, "noteID")

	cardNum, err := strconv.Atoi(chi.URLParam(r, "cardNum"))
	if err != nil || cardNum < 0 {
		handleError(w, r, errors.NewBadRequestError("invalid card number"))
		return
	}

	var req reviewCardRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	log = log.WithFields(map[string]any{
		"note_id":  noteID,
		"card_num": cardNum,
		"grade":    req.Grade,
	})
	log.Debug("reviewing card")

	card, err := s.ReviewService.ReviewCard(r.Context(), deckID, noteID, cardNum, models.Grade(req.Grade))
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("card reviewed successfully")
	writeJSON(w, http.StatusOK, card)
}
