package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
	"github.com/mcalder/deckard/internal/repository/sqlite"
	"github.com/mcalder/deckard/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type CardRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.CardRepository
}

func (s *CardRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewCardRepository(s.db)

	_, err := s.db.Exec(`INSERT INTO decks (id, name) VALUES ('d1', 'Spanish'), ('d2', 'French')`)
	s.Require().NoError(err)
	_, err = s.db.Exec(`
INSERT INTO notes (id, deck_id, template, fields) VALUES
  ('n1', 'd1', 'basic', '{"Front":"uno","Back":"one"}'),
  ('n2', 'd1', 'basic', '{"Front":"dos","Back":"two"}'),
  ('n3', 'd2', 'basic', '{"Front":"un","Back":"one"}')
`)
	s.Require().NoError(err)
}

func (s *CardRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *CardRepositorySuite) seedCard(noteID, deckID string, cardNum int, state models.CardState, due *time.Time) {
	_, err := s.db.Exec(`
INSERT INTO cards (note_id, card_num, deck_id, state, interval, ease, due, steps, lapse_interval, version)
VALUES (?, ?, ?, ?, 0, 2.5, ?, 0, 0, 0)
`, noteID, cardNum, deckID, state, due)
	s.Require().NoError(err)
}

func (s *CardRepositorySuite) TestGet() {
	due := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.seedCard("n1", "d1", 0, models.CardStateReview, &due)

	got, err := s.repo.Get(context.Background(), "n1", 0)
	s.Require().NoError(err)
	s.Equal("n1", got.NoteID)
	s.Equal(0, got.CardNum)
	s.Equal("d1", got.DeckID)
	s.Equal(models.CardStateReview, got.State)
	s.Require().NotNil(got.Due)
	s.True(got.Due.Equal(due))
	s.Equal(int64(0), got.Version)
}

func (s *CardRepositorySuite) TestGetMissing() {
	_, err := s.repo.Get(context.Background(), "n1", 7)
	s.ErrorIs(err, sql.ErrNoRows)
}

func (s *CardRepositorySuite) TestListByDeckAndNote() {
	ctx := context.Background()
	s.seedCard("n1", "d1", 0, models.CardStateNew, nil)
	s.seedCard("n1", "d1", 1, models.CardStateNew, nil)
	s.seedCard("n2", "d1", 0, models.CardStateNew, nil)
	s.seedCard("n3", "d2", 0, models.CardStateNew, nil)

	byDeck, err := s.repo.ListByDeck(ctx, "d1")
	s.Require().NoError(err)
	s.Len(byDeck, 3)

	byNote, err := s.repo.ListByNote(ctx, "n1")
	s.Require().NoError(err)
	s.Require().Len(byNote, 2)
	s.Equal(0, byNote[0].CardNum)
	s.Equal(1, byNote[1].CardNum)
}

func (s *CardRepositorySuite) TestListDueFiltersByDeckAndTime() {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := asOf.Add(-time.Hour)
	future := asOf.Add(time.Hour)

	s.seedCard("n1", "d1", 0, models.CardStateReview, &past)
	s.seedCard("n1", "d1", 1, models.CardStateReview, &future)
	s.seedCard("n2", "d1", 0, models.CardStateNew, nil)
	s.seedCard("n3", "d2", 0, models.CardStateReview, &past)

	due, err := s.repo.ListDue(ctx, "d1", asOf)
	s.Require().NoError(err)
	s.Require().Len(due, 2)
	for _, c := range due {
		s.Equal("d1", c.DeckID, "a due query must never leak cards from another deck")
		if c.Due != nil {
			s.False(c.Due.After(asOf))
		}
	}
}

func (s *CardRepositorySuite) TestListDueOrdering() {
	ctx := context.Background()
	asOf := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	earlier := asOf.Add(-2 * time.Hour)
	later := asOf.Add(-time.Hour)

	s.seedCard("n1", "d1", 0, models.CardStateNew, nil)
	s.seedCard("n1", "d1", 1, models.CardStateReview, &later)
	s.seedCard("n2", "d1", 0, models.CardStateLearning, &later)
	s.seedCard("n2", "d1", 1, models.CardStateRelapsed, &earlier)

	due, err := s.repo.ListDue(ctx, "d1", asOf)
	s.Require().NoError(err)
	s.Require().Len(due, 4)

	// Learning and relapsed first, most overdue leading, then review, then new.
	s.Equal(models.CardStateRelapsed, due[0].State)
	s.Equal(models.CardStateLearning, due[1].State)
	s.Equal(models.CardStateReview, due[2].State)
	s.Equal(models.CardStateNew, due[3].State)
}

func (s *CardRepositorySuite) TestUpdate() {
	ctx := context.Background()
	s.seedCard("n1", "d1", 0, models.CardStateNew, nil)

	card, err := s.repo.Get(ctx, "n1", 0)
	s.Require().NoError(err)

	due := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	card.State = models.CardStateReview
	card.Interval = 1
	card.Ease = 2.5
	card.Due = &due

	updated, err := s.repo.Update(ctx, *card)
	s.Require().NoError(err)
	s.Equal(int64(1), updated.Version, "a successful update bumps the version")

	got, err := s.repo.Get(ctx, "n1", 0)
	s.Require().NoError(err)
	s.Equal(models.CardStateReview, got.State)
	s.Equal(1, got.Interval)
	s.Equal(int64(1), got.Version)
	s.Require().NotNil(got.Due)
	s.True(got.Due.Equal(due))
}

func (s *CardRepositorySuite) TestUpdateStaleVersion() {
	ctx := context.Background()
	s.seedCard("n1", "d1", 0, models.CardStateNew, nil)

	// Two readers pick up the same version; only the first write may land.
	first, err := s.repo.Get(ctx, "n1", 0)
	s.Require().NoError(err)
	second, err := s.repo.Get(ctx, "n1", 0)
	s.Require().NoError(err)

	first.Interval = 1
	_, err = s.repo.Update(ctx, *first)
	s.Require().NoError(err)

	second.Interval = 4
	_, err = s.repo.Update(ctx, *second)
	s.ErrorIs(err, repository.ErrVersionMismatch)

	got, err := s.repo.Get(ctx, "n1", 0)
	s.Require().NoError(err)
	s.Equal(1, got.Interval, "the losing write must not clobber the winner")
}

func (s *CardRepositorySuite) TestUpdateMissing() {
	card := models.NewCard("n1", "d1", 9)
	_, err := s.repo.Update(context.Background(), card)
	s.ErrorIs(err, sql.ErrNoRows)
}

func (s *CardRepositorySuite) TestInsertReviewLog() {
	ctx := context.Background()
	s.seedCard("n1", "d1", 0, models.CardStateNew, nil)

	s.Require().NoError(s.repo.InsertReviewLog(ctx, "n1", 0, models.GradeGood))

	var count int
	var grade string
	err := s.db.QueryRow(`SELECT COUNT(*), MAX(grade) FROM review_log WHERE note_id = 'n1' AND card_num = 0`).
		Scan(&count, &grade)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Equal("good", grade)
}

func TestCardRepositorySuite(t *testing.T) {
	suite.Run(t, new(CardRepositorySuite))
}
