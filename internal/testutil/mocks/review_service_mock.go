package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/mcalder/deckard/internal/models"
)

// MockReviewService is a mock implementation of services.ReviewService
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) DueCards(ctx context.Context, deckID string, asOf time.Time) ([]models.Card, error) {
	args := m.Called(ctx, deckID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Card), args.Error(1)
}

func (m *MockReviewService) ReviewCard(ctx context.Context, deckID, noteID string, cardNum int, grade models.Grade) (*models.Card, error) {
	args := m.Called(ctx, deckID, noteID, cardNum, grade)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Card), args.Error(1)
}
