package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mcalder/deckard/internal/models"
)

// Sentinel errors surfaced by repository implementations. Services translate
// these into the application error taxonomy.
var (
	// ErrVersionMismatch means a compare-and-swap update lost the race: the
	// stored card no longer carries the version the caller read.
	ErrVersionMismatch = errors.New("repository: version mismatch")
	// ErrUnavailable means the storage engine could not complete the
	// operation within policy (lock contention, timeout).
	ErrUnavailable = errors.New("repository: storage unavailable")
)

// DeckRepository handles deck data access
type DeckRepository interface {
	Insert(ctx context.Context, deck models.Deck) error
	Get(ctx context.Context, id string) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	// Delete removes the deck and cascades to its notes and cards.
	Delete(ctx context.Context, id string) error
}

// NoteRepository handles note data access
type NoteRepository interface {
	// InsertWithCards creates the note and its derived cards in one atomic step.
	InsertWithCards(ctx context.Context, note models.Note, cards []models.Card) error
	Get(ctx context.Context, id string) (*models.Note, error)
	ListByDeck(ctx context.Context, deckID string) ([]models.Note, error)
	UpdateFields(ctx context.Context, id string, fields map[string]string) error
	// Delete removes the note and cascades to its cards.
	Delete(ctx context.Context, id string) error
}

// CardRepository handles card data access
type CardRepository interface {
	Get(ctx context.Context, noteID string, cardNum int) (*models.Card, error)
	ListByDeck(ctx context.Context, deckID string) ([]models.Card, error)
	ListByNote(ctx context.Context, noteID string) ([]models.Card, error)
	// ListDue returns the deck's cards with due <= asOf (or no due date yet),
	// ordered learning/relapsed first, then review, then new, by ascending due.
	ListDue(ctx context.Context, deckID string, asOf time.Time) ([]models.Card, error)
	// Update persists a full replacement of the card's scheduling fields,
	// guarded by the card's version stamp. On a lost race it returns
	// ErrVersionMismatch.
	Update(ctx context.Context, card models.Card) (*models.Card, error)
	InsertReviewLog(ctx context.Context, noteID string, cardNum int, grade models.Grade) error
}
