package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
)

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new DeckRepository implementation
func NewDeckRepository(db *sql.DB) repository.DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Insert(ctx context.Context, deck models.Deck) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("inserting deck: id=%s, name=%s", deck.ID, deck.Name)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO decks (id, name, created_at)
VALUES (?, ?, ?)
`, deck.ID, deck.Name, deck.CreatedAt)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return mapErr(err)
	}
	return nil
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("getting deck: id=%s", id)

	var d models.Deck
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, created_at
FROM decks
WHERE id = ?
`, id).Scan(&d.ID, &d.Name, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found: id=%s", id)
			return nil, err
		}
		log.Error("failed to get deck: %v", err)
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *deckRepository) List(ctx context.Context) ([]models.Deck, error) {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("listing decks")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, created_at
FROM decks
ORDER BY name
`)
	if err != nil {
		log.Error("failed to list decks: %v", err)
		return nil, mapErr(err)
	}
	defer rows.Close()

	var decks []models.Deck
	for rows.Next() {
		var d models.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			log.Error("failed to scan deck row: %v", err)
			return nil, err
		}
		decks = append(decks, d)
	}
	log.Debug("found %d decks", len(decks))
	return decks, rows.Err()
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("deck_repo")
	log.Debug("deleting deck: id=%s", id)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
		if err != nil {
			log.Error("failed to delete deck: %v", err)
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		// The FK cascade covers these, but being explicit keeps the delete
		// correct even when foreign keys are off in a session.
		if _, err := t.ExecContext(ctx, `DELETE FROM cards WHERE deck_id = ?`, id); err != nil {
			return err
		}
		if _, err := t.ExecContext(ctx, `DELETE FROM notes WHERE deck_id = ?`, id); err != nil {
			return err
		}
		log.Debug("deck deleted with cascading notes and cards: id=%s", id)
		return nil
	})
}
