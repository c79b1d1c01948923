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

type DeckRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.DeckRepository
}

func (s *DeckRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewDeckRepository(s.db)
}

func (s *DeckRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *DeckRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	deck := models.Deck{ID: "deck-1", Name: "Spanish", CreatedAt: time.Now().UTC()}

	s.Require().NoError(s.repo.Insert(ctx, deck))

	got, err := s.repo.Get(ctx, "deck-1")
	s.Require().NoError(err)
	s.Equal("deck-1", got.ID)
	s.Equal("Spanish", got.Name)
}

func (s *DeckRepositorySuite) TestGetMissing() {
	_, err := s.repo.Get(context.Background(), "nope")
	s.ErrorIs(err, sql.ErrNoRows)
}

func (s *DeckRepositorySuite) TestListOrderedByName() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d2", Name: "Zoology", CreatedAt: now}))
	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d1", Name: "Anatomy", CreatedAt: now}))

	decks, err := s.repo.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(decks, 2)
	s.Equal("Anatomy", decks[0].Name)
	s.Equal("Zoology", decks[1].Name)
}

func (s *DeckRepositorySuite) TestDeleteCascades() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.repo.Insert(ctx, models.Deck{ID: "d1", Name: "Spanish", CreatedAt: now}))

	_, err := s.db.ExecContext(ctx, `INSERT INTO notes (id, deck_id, template, fields) VALUES ('n1', 'd1', 'basic', '{}')`)
	s.Require().NoError(err)
	_, err = s.db.ExecContext(ctx, `INSERT INTO cards (note_id, card_num, deck_id) VALUES ('n1', 0, 'd1')`)
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(ctx, "d1"))

	var count int
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count))
	s.Equal(0, count, "notes should be gone with their deck")
	s.Require().NoError(s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cards`).Scan(&count))
	s.Equal(0, count, "cards should be gone with their deck")
}

func (s *DeckRepositorySuite) TestDeleteMissing() {
	err := s.repo.Delete(context.Background(), "nope")
	s.ErrorIs(err, sql.ErrNoRows)
}

func TestDeckRepositorySuite(t *testing.T) {
	suite.Run(t, new(DeckRepositorySuite))
}
