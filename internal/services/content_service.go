package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mcalder/deckard/internal/errors"
	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
	"github.com/mcalder/deckard/internal/template"
)

// ContentService owns decks, notes, and the cards generated from notes.
// Scheduling fields are never touched here; that is ReviewService territory.
type ContentService interface {
	CreateDeck(ctx context.Context, name string) (*models.Deck, error)
	ListDecks(ctx context.Context) ([]models.Deck, error)
	DeleteDeck(ctx context.Context, deckID string) error

	CreateNote(ctx context.Context, deckID, templateName string, fields map[string]string) (*models.Note, []models.Card, error)
	ListNotes(ctx context.Context, deckID string) ([]models.Note, error)
	ReadNote(ctx context.Context, deckID, noteID string) (*models.Note, error)
	UpdateNote(ctx context.Context, deckID, noteID string, fields map[string]string) (*models.Note, error)
	DeleteNote(ctx context.Context, deckID, noteID string) error

	ListCards(ctx context.Context, deckID string) ([]models.CardSummary, error)
}

type contentService struct {
	decks repository.DeckRepository
	notes repository.NoteRepository
	cards repository.CardRepository
}

// NewContentService creates a new ContentService
func NewContentService(decks repository.DeckRepository, notes repository.NoteRepository, cards repository.CardRepository) ContentService {
	return &contentService{decks: decks, notes: notes, cards: cards}
}

func (s *contentService) CreateDeck(ctx context.Context, name string) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "must not be empty")
	}

	deck := models.Deck{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	log.Debug("creating deck: id=%s, name=%s", deck.ID, deck.Name)

	if err := s.decks.Insert(ctx, deck); err != nil {
		return nil, storeErr(err, "deck", deck.Name)
	}
	return &deck, nil
}

func (s *contentService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, storeErr(err, "decks", "")
	}
	return decks, nil
}

func (s *contentService) DeleteDeck(ctx context.Context, deckID string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting deck: id=%s", deckID)

	if err := s.decks.Delete(ctx, deckID); err != nil {
		return storeErr(err, "deck", deckID)
	}
	log.Info("deck deleted: id=%s", deckID)
	return nil
}

func (s *contentService) CreateNote(ctx context.Context, deckID, templateName string, fields map[string]string) (*models.Note, []models.Card, error) {
	log := logger.FromContext(ctx)

	if templateName == "" {
		templateName = template.Default
	}
	if err := template.Validate(templateName, fields); err != nil {
		return nil, nil, err
	}
	if _, err := s.decks.Get(ctx, deckID); err != nil {
		return nil, nil, storeErr(err, "deck", deckID)
	}

	count, err := template.CardCount(templateName)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	note := models.Note{
		ID:        uuid.NewString(),
		DeckID:    deckID,
		Template:  templateName,
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cards := make([]models.Card, 0, count)
	for i := 0; i < count; i++ {
		cards = append(cards, models.NewCard(note.ID, deckID, i))
	}

	log.Debug("creating note: id=%s, deck_id=%s, template=%s, cards=%d", note.ID, deckID, templateName, count)
	if err := s.notes.InsertWithCards(ctx, note, cards); err != nil {
		return nil, nil, storeErr(err, "note", note.ID)
	}
	log.Info("note created: id=%s, deck_id=%s, cards=%d", note.ID, deckID, count)
	return &note, cards, nil
}

func (s *contentService) ListNotes(ctx context.Context, deckID string) ([]models.Note, error) {
	if _, err := s.decks.Get(ctx, deckID); err != nil {
		return nil, storeErr(err, "deck", deckID)
	}
	notes, err := s.notes.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, storeErr(err, "notes", deckID)
	}
	return notes, nil
}

func (s *contentService) ReadNote(ctx context.Context, deckID, noteID string) (*models.Note, error) {
	note, err := s.getNoteInDeck(ctx, deckID, noteID)
	if err != nil {
		return nil, err
	}
	return note, nil
}

func (s *contentService) UpdateNote(ctx context.Context, deckID, noteID string, fields map[string]string) (*models.Note, error) {
	log := logger.FromContext(ctx)

	note, err := s.getNoteInDeck(ctx, deckID, noteID)
	if err != nil {
		return nil, err
	}
	if err := template.Validate(note.Template, fields); err != nil {
		return nil, err
	}

	log.Debug("updating note: id=%s", noteID)
	if err := s.notes.UpdateFields(ctx, noteID, fields); err != nil {
		return nil, storeErr(err, "note", noteID)
	}
	note.Fields = fields
	note.UpdatedAt = time.Now().UTC()
	return note, nil
}

func (s *contentService) DeleteNote(ctx context.Context, deckID, noteID string) error {
	log := logger.FromContext(ctx)

	if _, err := s.getNoteInDeck(ctx, deckID, noteID); err != nil {
		return err
	}
	if err := s.notes.Delete(ctx, noteID); err != nil {
		return storeErr(err, "note", noteID)
	}
	log.Info("note deleted with its cards: id=%s, deck_id=%s", noteID, deckID)
	return nil
}

func (s *contentService) ListCards(ctx context.Context, deckID string) ([]models.CardSummary, error) {
	if _, err := s.decks.Get(ctx, deckID); err != nil {
		return nil, storeErr(err, "deck", deckID)
	}

	notes, err := s.notes.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, storeErr(err, "notes", deckID)
	}
	notesByID := make(map[string]models.Note, len(notes))
	for _, n := range notes {
		notesByID[n.ID] = n
	}

	cards, err := s.cards.ListByDeck(ctx, deckID)
	if err != nil {
		return nil, storeErr(err, "cards", deckID)
	}

	summaries := make([]models.CardSummary, 0, len(cards))
	for _, c := range cards {
		note, ok := notesByID[c.NoteID]
		if !ok {
			return nil, errors.NewInvariantError("card " + c.NoteID + " has no owning note")
		}
		front, back, err := template.Render(note.Template, note.Fields, c.CardNum)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.CardSummary{
			NoteID:  c.NoteID,
			CardNum: c.CardNum,
			Front:   front,
			Back:    back,
		})
	}
	return summaries, nil
}

// getNoteInDeck loads a note and verifies deck membership. A note in a
// different deck is indistinguishable from a missing one to the caller.
func (s *contentService) getNoteInDeck(ctx context.Context, deckID, noteID string) (*models.Note, error) {
	note, err := s.notes.Get(ctx, noteID)
	if err != nil {
		return nil, storeErr(err, "note", noteID)
	}
	if note.DeckID != deckID {
		return nil, errors.NewNotFoundError("note", noteID)
	}
	return note, nil
}

// storeErr translates repository failures into the application taxonomy.
func storeErr(err error, resource string, id interface{}) error {
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return errors.NewNotFoundError(resource, id)
	case stderrors.Is(err, repository.ErrUnavailable):
		return errors.NewStorageUnavailableError(err)
	default:
		return errors.NewInternalError(err)
	}
}
