// Package template maps note templates to the cards they generate. A
// template decides how many cards a note yields and which fields make up
// each card's front and back.
package template

import (
	"github.com/mcalder/deckard/internal/errors"
)

const (
	// Basic yields a single front/back card.
	Basic = "basic"
	// Reversed yields the basic card plus a second card asking the other way.
	Reversed = "reversed"

	// Default is the template assigned when a note does not name one.
	Default = Basic
)

const (
	FieldFront = "Front"
	FieldBack  = "Back"
)

// Known reports whether name is a recognized template.
func Known(name string) bool {
	switch name {
	case Basic, Reversed:
		return true
	}
	return false
}

// CardCount returns how many cards the template generates per note.
func CardCount(name string) (int, error) {
	switch name {
	case Basic:
		return 1, nil
	case Reversed:
		return 2, nil
	}
	return 0, errors.NewValidationError("template", "unknown template: "+name)
}

// Validate checks that fields carry everything the template needs.
func Validate(name string, fields map[string]string) error {
	if !Known(name) {
		return errors.NewValidationError("template", "unknown template: "+name)
	}
	if fields[FieldFront] == "" {
		return errors.NewValidationError("fields", "missing Front field")
	}
	if fields[FieldBack] == "" {
		return errors.NewValidationError("fields", "missing Back field")
	}
	return nil
}

// Render returns the front and back text for one card of a note.
// cardNum selects which generated card to render; for a reversed template,
// card 1 swaps the question direction.
func Render(name string, fields map[string]string, cardNum int) (front, back string, err error) {
	count, err := CardCount(name)
	if err != nil {
		return "", "", err
	}
	if cardNum < 0 || cardNum >= count {
		return "", "", errors.NewValidationError("card_num", "out of range for template "+name)
	}

	if name == Reversed && cardNum == 1 {
		return fields[FieldBack], fields[FieldFront], nil
	}
	return fields[FieldFront], fields[FieldBack], nil
}
