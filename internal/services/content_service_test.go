package services_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mcalder/deckard/internal/errors"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
	"github.com/mcalder/deckard/internal/services"
	"github.com/mcalder/deckard/internal/testutil/mocks"
)

type ContentServiceSuite struct {
	suite.Suite
	decks *mocks.MockDeckRepository
	notes *mocks.MockNoteRepository
	cards *mocks.MockCardRepository
	svc   services.ContentService
}

func (s *ContentServiceSuite) SetupTest() {
	s.decks = new(mocks.MockDeckRepository)
	s.notes = new(mocks.MockNoteRepository)
	s.cards = new(mocks.MockCardRepository)
	s.svc = services.NewContentService(s.decks, s.notes, s.cards)
}

func (s *ContentServiceSuite) deck(id string) *models.Deck {
	return &models.Deck{ID: id, Name: "Spanish", CreatedAt: time.Now().UTC()}
}

func (s *ContentServiceSuite) TestCreateDeck() {
	s.decks.On("Insert", mock.Anything, mock.AnythingOfType("models.Deck")).Return(nil)

	deck, err := s.svc.CreateDeck(context.Background(), "  Spanish  ")
	s.Require().NoError(err)
	s.Equal("Spanish", deck.Name, "deck names are trimmed")
	s.NotEmpty(deck.ID)
	s.decks.AssertExpectations(s.T())
}

func (s *ContentServiceSuite) TestCreateDeckEmptyName() {
	_, err := s.svc.CreateDeck(context.Background(), "   ")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeValidation))
	s.decks.AssertNotCalled(s.T(), "Insert", mock.Anything, mock.Anything)
}

func (s *ContentServiceSuite) TestCreateNoteBasic() {
	s.decks.On("Get", mock.Anything, "d1").Return(s.deck("d1"), nil)

	var inserted []models.Card
	s.notes.On("InsertWithCards", mock.Anything, mock.AnythingOfType("models.Note"), mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).([]models.Card)
		}).
		Return(nil)

	fields := map[string]string{"Front": "hola", "Back": "hello"}
	note, cards, err := s.svc.CreateNote(context.Background(), "d1", "", fields)
	s.Require().NoError(err)
	s.Equal("basic", note.Template, "empty template name falls back to the default")
	s.Equal(fields, note.Fields)

	s.Require().Len(cards, 1)
	s.Require().Len(inserted, 1)
	s.Equal(0, inserted[0].CardNum)
	s.Equal(note.ID, inserted[0].NoteID)
	s.Equal(models.CardStateNew, inserted[0].State)
	s.Equal(models.DefaultEase, inserted[0].Ease)
	s.Nil(inserted[0].Due)
}

func (s *ContentServiceSuite) TestCreateNoteReversed() {
	s.decks.On("Get", mock.Anything, "d1").Return(s.deck("d1"), nil)

	var inserted []models.Card
	s.notes.On("InsertWithCards", mock.Anything, mock.AnythingOfType("models.Note"), mock.Anything).
		Run(func(args mock.Arguments) {
			inserted = args.Get(2).([]models.Card)
		}).
		Return(nil)

	_, cards, err := s.svc.CreateNote(context.Background(), "d1", "reversed",
		map[string]string{"Front": "hola", "Back": "hello"})
	s.Require().NoError(err)
	s.Len(cards, 2)
	s.Require().Len(inserted, 2)
	s.Equal(0, inserted[0].CardNum)
	s.Equal(1, inserted[1].CardNum)
}

func (s *ContentServiceSuite) TestCreateNoteDeckMissing() {
	s.decks.On("Get", mock.Anything, "nope").Return(nil, sql.ErrNoRows)

	_, _, err := s.svc.CreateNote(context.Background(), "nope", "basic",
		map[string]string{"Front": "a", "Back": "b"})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))
	s.notes.AssertNotCalled(s.T(), "InsertWithCards", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ContentServiceSuite) TestCreateNoteMissingFields() {
	_, _, err := s.svc.CreateNote(context.Background(), "d1", "basic",
		map[string]string{"Front": "hola"})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeValidation))
	s.decks.AssertNotCalled(s.T(), "Get", mock.Anything, mock.Anything)
}

func (s *ContentServiceSuite) TestCreateNoteUnknownTemplate() {
	_, _, err := s.svc.CreateNote(context.Background(), "d1", "cloze",
		map[string]string{"Front": "a", "Back": "b"})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeValidation))
}

func (s *ContentServiceSuite) TestReadNote() {
	note := &models.Note{ID: "n1", DeckID: "d1", Template: "basic",
		Fields: map[string]string{"Front": "hola", "Back": "hello"}}
	s.notes.On("Get", mock.Anything, "n1").Return(note, nil)

	got, err := s.svc.ReadNote(context.Background(), "d1", "n1")
	s.Require().NoError(err)
	s.Equal(note.Fields, got.Fields)
}

func (s *ContentServiceSuite) TestReadNoteWrongDeck() {
	note := &models.Note{ID: "n1", DeckID: "other", Template: "basic"}
	s.notes.On("Get", mock.Anything, "n1").Return(note, nil)

	_, err := s.svc.ReadNote(context.Background(), "d1", "n1")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNotFound),
		"a note in a different deck must look missing")
}

func (s *ContentServiceSuite) TestUpdateNote() {
	note := &models.Note{ID: "n1", DeckID: "d1", Template: "basic",
		Fields: map[string]string{"Front": "hola", "Back": "hello"}}
	s.notes.On("Get", mock.Anything, "n1").Return(note, nil)

	newFields := map[string]string{"Front": "adios", "Back": "goodbye"}
	s.notes.On("UpdateFields", mock.Anything, "n1", newFields).Return(nil)

	got, err := s.svc.UpdateNote(context.Background(), "d1", "n1", newFields)
	s.Require().NoError(err)
	s.Equal(newFields, got.Fields)
	s.notes.AssertExpectations(s.T())
}

func (s *ContentServiceSuite) TestUpdateNoteInvalidFields() {
	note := &models.Note{ID: "n1", DeckID: "d1", Template: "basic",
		Fields: map[string]string{"Front": "hola", "Back": "hello"}}
	s.notes.On("Get", mock.Anything, "n1").Return(note, nil)

	_, err := s.svc.UpdateNote(context.Background(), "d1", "n1", map[string]string{"Front": "x"})
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeValidation))
	s.notes.AssertNotCalled(s.T(), "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ContentServiceSuite) TestDeleteNote() {
	note := &models.Note{ID: "n1", DeckID: "d1", Template: "basic"}
	s.notes.On("Get", mock.Anything, "n1").Return(note, nil)
	s.notes.On("Delete", mock.Anything, "n1").Return(nil)

	s.Require().NoError(s.svc.DeleteNote(context.Background(), "d1", "n1"))
	s.notes.AssertExpectations(s.T())
}

func (s *ContentServiceSuite) TestDeleteDeckMissing() {
	s.decks.On("Delete", mock.Anything, "nope").Return(sql.ErrNoRows)

	err := s.svc.DeleteDeck(context.Background(), "nope")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeNotFound))
}

func (s *ContentServiceSuite) TestListDecksStorageUnavailable() {
	s.decks.On("List", mock.Anything).
		Return(nil, stderrors.Join(repository.ErrUnavailable, stderrors.New("database is locked")))

	_, err := s.svc.ListDecks(context.Background())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeStorageUnavailable))
}

func (s *ContentServiceSuite) TestListCards() {
	s.decks.On("Get", mock.Anything, "d1").Return(s.deck("d1"), nil)
	s.notes.On("ListByDeck", mock.Anything, "d1").Return([]models.Note{
		{ID: "n1", DeckID: "d1", Template: "basic",
			Fields: map[string]string{"Front": "uno", "Back": "one"}},
		{ID: "n2", DeckID: "d1", Template: "reversed",
			Fields: map[string]string{"Front": "dos", "Back": "two"}},
	}, nil)
	s.cards.On("ListByDeck", mock.Anything, "d1").Return([]models.Card{
		models.NewCard("n1", "d1", 0),
		models.NewCard("n2", "d1", 0),
		models.NewCard("n2", "d1", 1),
	}, nil)

	summaries, err := s.svc.ListCards(context.Background(), "d1")
	s.Require().NoError(err)
	s.Require().Len(summaries, 3)

	s.Equal("uno", summaries[0].Front)
	s.Equal("one", summaries[0].Back)
	s.Equal("dos", summaries[1].Front)
	s.Equal("two", summaries[1].Back)
	s.Equal("two", summaries[2].Front, "the second reversed card swaps direction")
	s.Equal("dos", summaries[2].Back)
}

func (s *ContentServiceSuite) TestListCardsOrphanCard() {
	s.decks.On("Get", mock.Anything, "d1").Return(s.deck("d1"), nil)
	s.notes.On("ListByDeck", mock.Anything, "d1").Return([]models.Note{}, nil)
	s.cards.On("ListByDeck", mock.Anything, "d1").Return([]models.Card{
		models.NewCard("ghost", "d1", 0),
	}, nil)

	_, err := s.svc.ListCards(context.Background(), "d1")
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInternal))
}

func TestContentServiceSuite(t *testing.T) {
	suite.Run(t, new(ContentServiceSuite))
}
