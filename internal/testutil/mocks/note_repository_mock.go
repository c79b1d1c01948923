package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/mcalder/deckard/internal/models"
)

// MockNoteRepository is a mock implementation of repository.NoteRepository
type MockNoteRepository struct {
	mock.Mock
}

func (m *MockNoteRepository) InsertWithCards(ctx context.Context, note models.Note, cards []models.Card) error {
	args := m.Called(ctx, note, cards)
	return args.Error(0)
}

func (m *MockNoteRepository) Get(ctx context.Context, id string) (*models.Note, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockNoteRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Note, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func (m *MockNoteRepository) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockNoteRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
