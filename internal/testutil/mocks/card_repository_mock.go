package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/mcalder/deckard/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Get(ctx context.Context, noteID string, cardNum int) (*models.Card, error) {
	args := m.Called(ctx, noteID, cardNum)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Card, error) {
	args := m.Called(ctx, deckID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) ListByNote(ctx context.Context, noteID string) ([]models.Card, error) {
	args := m.Called(ctx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) ListDue(ctx context.Context, deckID string, asOf time.Time) ([]models.Card, error) {
	args := m.Called(ctx, deckID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockCardRepository) Update(ctx context.Context, card models.Card) (*models.Card, error) {
	args := m.Called(ctx, card)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}

func (m *MockCardRepository) InsertReviewLog(ctx context.Context, noteID string, cardNum int, grade models.Grade) error {
	args := m.Called(ctx, noteID, cardNum, grade)
	return args.Error(0)
}
