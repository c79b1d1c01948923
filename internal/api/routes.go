package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleCreateDeck)
		r.Delete("/decks/{deckID}", s.handleDeleteDeck)

		r.Get("/decks/{deckID}/notes", s.handleListNotes)
		r.Post("/decks/{deckID}/notes", s.handleCreateNote)
		r.Get("/decks/{deckID}/notes/{noteID}", s.handleReadNote)
		r.Put("/decks/{deckID}/notes/{noteID}", s.handleUpdateNote)
		r.Delete("/decks/{deckID}/notes/{noteID}", s.handleDeleteNote)

		r.Get("/decks/{deckID}/cards", s.handleListCards)
		r.Get("/decks/{deckID}/review", s.handleListCardsToReview)
		r.Post("/decks/{deckID}/notes/{noteID}/cards/{cardNum}/review", s.handleReviewCard)

		r.Post("/preview", s.handlePreviewNote)
	})

	return r
}
