package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
	"github.com/mcalder/deckard/internal/repository/sqlite"
	"github.com/mcalder/deckard/internal/testutil"
)

type NoteRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	repo  repository.NoteRepository
	cards repository.CardRepository
}

func (s *NoteRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewNoteRepository(s.db)
	s.cards = sqlite.NewCardRepository(s.db)

	_, err := s.db.Exec(`INSERT INTO decks (id, name) VALUES ('d1', 'Spanish')`)
	s.Require().NoError(err)
}

func (s *NoteRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *NoteRepositorySuite) newNote(id string) models.Note {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Note{
		ID:        id,
		DeckID:    "d1",
		Template:  "basic",
		Fields:    map[string]string{"Front": "hola", "Back": "hello"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *NoteRepositorySuite) TestInsertWithCardsAndGet() {
	ctx := context.Background()
	note := s.newNote("n1")
	cards := []models.Card{
		models.NewCard("n1", "d1", 0),
		models.NewCard("n1", "d1", 1),
	}

	s.Require().NoError(s.repo.InsertWithCards(ctx, note, cards))

	got, err := s.repo.Get(ctx, "n1")
	s.Require().NoError(err)
	s.Equal(note.Fields, got.Fields, "fields must round-trip exactly")
	s.Equal("basic", got.Template)
	s.Equal("d1", got.DeckID)

	stored, err := s.cards.ListByNote(ctx, "n1")
	s.Require().NoError(err)
	s.Require().Len(stored, 2)
	for i, c := range stored {
		s.Equal(i, c.CardNum, "card numbers must be contiguous from 0")
		s.Equal(models.CardStateNew, c.State)
		s.Equal(models.DefaultEase, c.Ease)
		s.Nil(c.Due, "new cards carry no due date")
	}
}

func (s *NoteRepositorySuite) TestInsertWithCardsIsAtomic() {
	ctx := context.Background()
	note := s.newNote("n1")
	// The second card row violates the primary key, so the whole insert must roll back.
	cards := []models.Card{
		models.NewCard("n1", "d1", 0),
		models.NewCard("n1", "d1", 0),
	}

	err := s.repo.InsertWithCards(ctx, note, cards)
	s.Require().Error(err)

	_, err = s.repo.Get(ctx, "n1")
	s.ErrorIs(err, sql.ErrNoRows, "no partial note may survive a failed create")
}

func (s *NoteRepositorySuite) TestListByDeck() {
	ctx := context.Background()
	s.Require().NoError(s.repo.InsertWithCards(ctx, s.newNote("n1"), []models.Card{models.NewCard("n1", "d1", 0)}))
	s.Require().NoError(s.repo.InsertWithCards(ctx, s.newNote("n2"), []models.Card{models.NewCard("n2", "d1", 0)}))

	notes, err := s.repo.ListByDeck(ctx, "d1")
	s.Require().NoError(err)
	s.Len(notes, 2)
}

func (s *NoteRepositorySuite) TestUpdateFields() {
	ctx := context.Background()
	s.Require().NoError(s.repo.InsertWithCards(ctx, s.newNote("n1"), []models.Card{models.NewCard("n1", "d1", 0)}))

	newFields := map[string]string{"Front": "adiós", "Back": "goodbye"}
	s.Require().NoError(s.repo.UpdateFields(ctx, "n1", newFields))

	got, err := s.repo.Get(ctx, "n1")
	s.Require().NoError(err)
	s.Equal(newFields, got.Fields)
}

func (s *NoteRepositorySuite) TestUpdateFieldsMissing() {
	err := s.repo.UpdateFields(context.Background(), "nope", map[string]string{"Front": "a", "Back": "b"})
	s.ErrorIs(err, sql.ErrNoRows)
}

func (s *NoteRepositorySuite) TestDeleteCascadesToCards() {
	ctx := context.Background()
	s.Require().NoError(s.repo.InsertWithCards(ctx, s.newNote("n1"), []models.Card{
		models.NewCard("n1", "d1", 0),
		models.NewCard("n1", "d1", 1),
	}))

	s.Require().NoError(s.repo.Delete(ctx, "n1"))

	cards, err := s.cards.ListByNote(ctx, "n1")
	s.Require().NoError(err)
	s.Empty(cards, "deleting a note removes all its cards")

	due, err := s.cards.ListDue(ctx, "d1", time.Now().UTC())
	s.Require().NoError(err)
	s.Empty(due, "deleted cards never reappear in the due queue")
}

func TestNoteRepositorySuite(t *testing.T) {
	suite.Run(t, new(NoteRepositorySuite))
}
