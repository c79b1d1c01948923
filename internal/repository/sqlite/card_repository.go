package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

const cardColumns = `note_id, card_num, deck_id, state, interval, ease, due, steps, lapse_interval, version, created_at, updated_at`

func scanCard(row interface {
	Scan(dest ...interface{}) error
}) (models.Card, error) {
	var c models.Card
	var due sql.NullTime
	err := row.Scan(&c.NoteID, &c.CardNum, &c.DeckID, &c.State, &c.Interval, &c.Ease, &due,
		&c.Steps, &c.LapseInterval, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return models.Card{}, err
	}
	if due.Valid {
		t := due.Time
		c.Due = &t
	}
	return c, nil
}

func (r *cardRepository) Get(ctx context.Context, noteID string, cardNum int) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: note_id=%s, card_num=%d", noteID, cardNum)

	row := r.db.QueryRowContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE note_id = ? AND card_num = ?
`, noteID, cardNum)
	c, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found: note_id=%s, card_num=%d", noteID, cardNum)
			return nil, err
		}
		log.Error("failed to get card: %v", err)
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *cardRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: deck_id=%s", deckID)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE deck_id = ?
ORDER BY note_id, card_num
`, deckID)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, mapErr(err)
	}
	return collectCards(rows, log)
}

func (r *cardRepository) ListByNote(ctx context.Context, noteID string) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: note_id=%s", noteID)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+cardColumns+`
FROM cards
WHERE note_id = ?
ORDER BY card_num
`, noteID)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, mapErr(err)
	}
	return collectCards(rows, log)
}

func (r *cardRepository) ListDue(ctx context.Context, deckID string, asOf time.Time) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing due cards: deck_id=%s, as_of=%s", deckID, asOf.Format(time.RFC3339))

	query := sqlBuilder.Select(
		"note_id", "card_num", "deck_id", "state", "interval", "ease", "due",
		"steps", "lapse_interval", "version", "created_at", "updated_at",
	).From("cards").
		Where(squirrel.Eq{"deck_id": deckID}).
		Where(squirrel.Or{
			squirrel.Eq{"due": nil},
			squirrel.LtOrEq{"due": asOf},
		}).
		// Learning and relapsed cards first, then review, then new; most
		// overdue first within each bucket.
		OrderBy(
			`CASE state WHEN 'learning' THEN 0 WHEN 'relapsed' THEN 0 WHEN 'review' THEN 1 ELSE 2 END`,
			"due IS NULL",
			"due ASC",
			"note_id",
			"card_num",
		)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build due query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query due cards: %v", err)
		return nil, mapErr(err)
	}
	cards, err := collectCards(rows, log)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d due cards", len(cards))
	return cards, nil
}

func (r *cardRepository) Update(ctx context.Context, c models.Card) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: note_id=%s, card_num=%d, state=%s, interval=%d, ease=%.2f, version=%d",
		c.NoteID, c.CardNum, c.State, c.Interval, c.Ease, c.Version)

	res, err := r.db.ExecContext(ctx, `
UPDATE cards
SET state = ?, interval = ?, ease = ?, due = ?, steps = ?, lapse_interval = ?,
    version = version + 1, updated_at = CURRENT_TIMESTAMP
WHERE note_id = ? AND card_num = ? AND version = ?
`, c.State, c.Interval, c.Ease, c.Due, c.Steps, c.LapseInterval,
		c.NoteID, c.CardNum, c.Version)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return nil, mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish a lost race from a missing card.
		var exists int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM cards WHERE note_id = ? AND card_num = ?`, c.NoteID, c.CardNum).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found on update: note_id=%s, card_num=%d", c.NoteID, c.CardNum)
			return nil, sql.ErrNoRows
		}
		if err != nil {
			return nil, mapErr(err)
		}
		log.Debug("card update lost the race: note_id=%s, card_num=%d, version=%d", c.NoteID, c.CardNum, c.Version)
		return nil, repository.ErrVersionMismatch
	}

	c.Version++
	return &c, nil
}

func (r *cardRepository) InsertReviewLog(ctx context.Context, noteID string, cardNum int, grade models.Grade) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting review log: note_id=%s, card_num=%d, grade=%s", noteID, cardNum, grade)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO review_log (note_id, card_num, grade)
VALUES (?, ?, ?)
`, noteID, cardNum, grade)
	if err != nil {
		log.Error("failed to insert review log: %v", err)
		return mapErr(err)
	}
	return nil
}

func collectCards(rows *sql.Rows, log *logger.Logger) ([]models.Card, error) {
	defer rows.Close()
	var cards []models.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
