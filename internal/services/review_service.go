package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/mcalder/deckard/internal/errors"
	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
	"github.com/mcalder/deckard/internal/scheduler"
)

// ReviewService is the transactional glue between the content store and the
// scheduler; the only path for review operations.
type ReviewService interface {
	// DueCards returns the deck's review queue as of the given time:
	// learning/relapsed cards first (most overdue first), then review cards
	// by ascending due, then new cards; capped by the session limits.
	DueCards(ctx context.Context, deckID string, asOf time.Time) ([]models.Card, error)
	// ReviewCard applies one grade to one card. A concurrent review of the
	// same card surfaces as a CONFLICT error; the caller decides whether to
	// re-fetch and resubmit.
	ReviewCard(ctx context.Context, deckID, noteID string, cardNum int, grade models.Grade) (*models.Card, error)
}

// SessionLimits caps how many cards of each kind one queue fetch returns.
// Zero means unlimited.
type SessionLimits struct {
	NewCards int
	Reviews  int
}

type reviewService struct {
	decks  repository.DeckRepository
	cards  repository.CardRepository
	sched  scheduler.Config
	limits SessionLimits
}

// NewReviewService creates a new ReviewService
func NewReviewService(decks repository.DeckRepository, cards repository.CardRepository, sched scheduler.Config, limits SessionLimits) ReviewService {
	return &reviewService{decks: decks, cards: cards, sched: sched, limits: limits}
}

func (s *reviewService) DueCards(ctx context.Context, deckID string, asOf time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("fetching due cards: deck_id=%s", deckID)

	if _, err := s.decks.Get(ctx, deckID); err != nil {
		return nil, storeErr(err, "deck", deckID)
	}

	cards, err := s.cards.ListDue(ctx, deckID, asOf)
	if err != nil {
		return nil, storeErr(err, "cards", deckID)
	}

	capped := s.capSession(cards)
	log.Debug("due queue: %d cards (%d before caps)", len(capped), len(cards))
	return capped, nil
}

// capSession applies the per-session limits while preserving the store's
// ordering. Learning and relapsed cards are never dropped; leaving a card
// mid-step is worse than a long session.
func (s *reviewService) capSession(cards []models.Card) []models.Card {
	out := make([]models.Card, 0, len(cards))
	newCount, reviewCount := 0, 0
	for _, c := range cards {
		switch c.State {
		case models.CardStateNew:
			if s.limits.NewCards > 0 && newCount >= s.limits.NewCards {
				continue
			}
			newCount++
		case models.CardStateReview:
			if s.limits.Reviews > 0 && reviewCount >= s.limits.Reviews {
				continue
			}
			reviewCount++
		}
		out = append(out, c)
	}
	return out
}

func (s *reviewService) ReviewCard(ctx context.Context, deckID, noteID string, cardNum int, grade models.Grade) (*models.Card, error) {
	log := logger.FromContext(ctx)
	log.Debug("reviewing card: deck_id=%s, note_id=%s, card_num=%d, grade=%s", deckID, noteID, cardNum, grade)

	if !grade.Valid() {
		return nil, errors.NewInvalidGradeError(grade)
	}

	card, err := s.cards.Get(ctx, noteID, cardNum)
	if err != nil {
		return nil, storeErr(err, "card", noteID)
	}
	if card.DeckID != deckID {
		return nil, errors.NewNotFoundError("card", noteID)
	}

	next, err := scheduler.Apply(*card, grade, time.Now().UTC(), s.sched)
	if err != nil {
		return nil, err
	}

	updated, err := s.updateWithRetry(ctx, next)
	if err != nil {
		switch {
		case stderrors.Is(err, repository.ErrVersionMismatch):
			// Not retried here: the caller must observe the winning review's
			// state before resubmitting.
			log.Warn("concurrent review detected: note_id=%s, card_num=%d", noteID, cardNum)
			return nil, errors.NewConflictError("card", noteID)
		default:
			return nil, storeErr(err, "card", noteID)
		}
	}

	if err := s.cards.InsertReviewLog(ctx, noteID, cardNum, grade); err != nil {
		// Review history is best effort; the review itself already stuck.
		log.Warn("failed to record review log: %v", err)
	}

	log.Info("card reviewed: note_id=%s, card_num=%d, grade=%s, state=%s, interval=%d",
		noteID, cardNum, grade, updated.State, updated.Interval)
	return updated, nil
}

// updateWithRetry retries briefly on transient lock contention. Version
// mismatches are never retried.
func (s *reviewService) updateWithRetry(ctx context.Context, card models.Card) (*models.Card, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		updated, err := s.cards.Update(ctx, card)
		if err == nil {
			return updated, nil
		}
		if !stderrors.Is(err, repository.ErrUnavailable) {
			return nil, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return nil, lastErr
		case <-time.After(time.Duration(attempt+1) * 50 * time.Millisecond):
		}
	}
	return nil, lastErr
}
