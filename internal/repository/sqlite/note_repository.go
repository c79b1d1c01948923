package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/mcalder/deckard/internal/logger"
	"github.com/mcalder/deckard/internal/models"
	"github.com/mcalder/deckard/internal/repository"
)

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new NoteRepository implementation
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) InsertWithCards(ctx context.Context, note models.Note, cards []models.Card) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("inserting note with %d cards: id=%s, deck_id=%s", len(cards), note.ID, note.DeckID)

	fieldsJSON, err := json.Marshal(note.Fields)
	if err != nil {
		return err
	}

	return tx(ctx, r.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `
INSERT INTO notes (id, deck_id, template, fields, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`, note.ID, note.DeckID, note.Template, string(fieldsJSON), note.CreatedAt, note.UpdatedAt); err != nil {
			log.Error("failed to insert note: %v", err)
			return err
		}
		for _, c := range cards {
			if _, err := t.ExecContext(ctx, `
INSERT INTO cards (note_id, card_num, deck_id, state, interval, ease, due, steps, lapse_interval, version, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, c.NoteID, c.CardNum, c.DeckID, c.State, c.Interval, c.Ease, c.Due, c.Steps, c.LapseInterval, c.Version,
				note.CreatedAt, note.CreatedAt); err != nil {
				log.Error("failed to insert card %d for note %s: %v", c.CardNum, note.ID, err)
				return err
			}
		}
		return nil
	})
}

func (r *noteRepository) Get(ctx context.Context, id string) (*models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("getting note: id=%s", id)

	var n models.Note
	var fieldsJSON string
	err := r.db.QueryRowContext(ctx, `
SELECT id, deck_id, template, fields, created_at, updated_at
FROM notes
WHERE id = ?
`, id).Scan(&n.ID, &n.DeckID, &n.Template, &fieldsJSON, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("note not found: id=%s", id)
			return nil, err
		}
		log.Error("failed to get note: %v", err)
		return nil, mapErr(err)
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &n.Fields); err != nil {
		log.Error("failed to decode note fields: %v", err)
		return nil, err
	}
	return &n, nil
}

func (r *noteRepository) ListByDeck(ctx context.Context, deckID string) ([]models.Note, error) {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("listing notes: deck_id=%s", deckID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, deck_id, template, fields, created_at, updated_at
FROM notes
WHERE deck_id = ?
ORDER BY created_at, id
`, deckID)
	if err != nil {
		log.Error("failed to list notes: %v", err)
		return nil, mapErr(err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		var fieldsJSON string
		if err := rows.Scan(&n.ID, &n.DeckID, &n.Template, &fieldsJSON, &n.CreatedAt, &n.UpdatedAt); err != nil {
			log.Error("failed to scan note row: %v", err)
			return nil, err
		}
		if err := json.Unmarshal([]byte(fieldsJSON), &n.Fields); err != nil {
			log.Error("failed to decode note fields: %v", err)
			return nil, err
		}
		notes = append(notes, n)
	}
	log.Debug("found %d notes", len(notes))
	return notes, rows.Err()
}

func (r *noteRepository) UpdateFields(ctx context.Context, id string, fields map[string]string) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("updating note fields: id=%s", id)

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
UPDATE notes
SET fields = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, string(fieldsJSON), id)
	if err != nil {
		log.Error("failed to update note: %v", err)
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *noteRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("note_repo")
	log.Debug("deleting note: id=%s", id)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
		if err != nil {
			log.Error("failed to delete note: %v", err)
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		if _, err := t.ExecContext(ctx, `DELETE FROM cards WHERE note_id = ?`, id); err != nil {
			return err
		}
		log.Debug("note deleted with cascading cards: id=%s", id)
		return nil
	})
}
