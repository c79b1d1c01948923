package models

import "time"

// CardState tracks where a card sits in the review lifecycle.
type CardState string

const (
	CardStateNew      CardState = "new"
	CardStateLearning CardState = "learning"
	CardStateReview   CardState = "review"
	CardStateRelapsed CardState = "relapsed"
)

// Valid reports whether s is one of the known card states.
func (s CardState) Valid() bool {
	switch s {
	case CardStateNew, CardStateLearning, CardStateReview, CardStateRelapsed:
		return true
	}
	return false
}

// Grade is the learner's self-reported recall quality for a review.
type Grade string

const (
	GradeAgain Grade = "again"
	GradeHard  Grade = "hard"
	GradeGood  Grade = "good"
	GradeEasy  Grade = "easy"
)

// Valid reports whether g is one of the four recognized grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeAgain, GradeHard, GradeGood, GradeEasy:
		return true
	}
	return false
}

// DefaultEase is the ease factor assigned to freshly created cards.
const DefaultEase = 2.5

type Deck struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Note struct {
	ID        string            `json:"id"`
	DeckID    string            `json:"deck_id"`
	Template  string            `json:"template"`
	Fields    map[string]string `json:"fields"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type Card struct {
	NoteID  string `json:"note_id"`
	DeckID  string `json:"deck_id"`
	CardNum int    `json:"card_num"`

	State    CardState `json:"state"`
	Interval int       `json:"interval"`
	Ease     float64   `json:"ease"`
	// Due is nil while the card is New; a nil due is immediately eligible.
	Due *time.Time `json:"due"`
	// Steps counts the learning (or relearning) steps still ahead of the card.
	Steps int `json:"steps"`
	// LapseInterval preserves the reduced interval a relapsed card re-graduates to.
	LapseInterval int `json:"lapse_interval"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCard returns a card in the initial scheduling state for a freshly
// created note.
func NewCard(noteID, deckID string, cardNum int) Card {
	return Card{
		NoteID:  noteID,
		DeckID:  deckID,
		CardNum: cardNum,
		State:   CardStateNew,
		Ease:    DefaultEase,
	}
}

// CardSummary is the rendered front/back view of a card.
type CardSummary struct {
	NoteID  string `json:"note_id"`
	CardNum int    `json:"card_num"`
	Front   string `json:"front"`
	Back    string `json:"back"`
}

type ReviewLog struct {
	ID         int64     `json:"id"`
	NoteID     string    `json:"note_id"`
	CardNum    int       `json:"card_num"`
	Grade      Grade     `json:"grade"`
	ReviewedAt time.Time `json:"reviewed_at"`
}
