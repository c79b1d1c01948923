package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mcalder/deckard/internal/models"
)

// MockContentService is a mock implementation of services.ContentService
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) CreateDeck(ctx context.Context, name string) (*models.Deck, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Deck), args.Error(1)
}

func (m *MockContentService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Deck), args.Error(1)
}

func (m *MockContentService) DeleteDeck(ctx context.Context, deckID string) error {
	args := m.Called(ctx, deckID)
	return args.Error(0)
}

func (m *MockContentService) CreateNote(ctx context.Context, deckID, templateName string, fields map[string]string) (*models.Note, []models.Card, error) {
	args := m.Called(ctx, deckID, templateName, fields)
	var note *models.Note
	if args.Get(0) != nil {
		note = args.Get(0).(*models.Note)
	}
	var cards []models.Card
	if args.Get(1) != nil {
		cards = args.Get(1).([]models.Card)
	}
	return note, cards, args.Error(2)
}

func (m *MockContentService) ListNotes(ctx context.Context, deckID string) ([]models.Note, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockContentService) ReadNote(ctx context.Context, deckID, noteID string) (*models.Note, error) {
	args := m.Called(ctx, deckID, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockContentService) UpdateNote(ctx context.Context, deckID, noteID string, fields map[string]string) (*models.Note, error) {
	args := m.Called(ctx, deckID, noteID, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockContentService) DeleteNote(ctx context.Context, deckID, noteID string) error {
	args := m.Called(ctx, deckID, noteID)
	return args.Error(0)
}

func (m *MockContentService) ListCards(ctx context.Context, deckID string) ([]models.CardSummary, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CardSummary), args.Error(1)
}
