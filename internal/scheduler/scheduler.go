package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/mcalder/deckard/internal/errors"
	"github.com/mcalder/deckard/internal/models"
)

// Config holds the scheduling constants. Every tunable the algorithm uses
// lives here so deployments can adjust pacing without touching the state
// machine.
type Config struct {
	// LearningSteps are the sub-day delays a new card walks through before
	// graduating to Review.
	LearningSteps []time.Duration
	// RelearnSteps are the delays a relapsed card walks through before
	// re-graduating.
	RelearnSteps []time.Duration
	// GraduatingInterval is the interval, in days, granted on graduation via Good.
	GraduatingInterval int
	// EasyInterval is the interval, in days, granted on graduation via Easy.
	EasyInterval int
	// EasyBonus multiplies the interval growth of an Easy review.
	EasyBonus float64
	// HardFactor shrinks the interval of a Hard review; must be below 1.
	HardFactor float64
	// LapseMultiplier is the fraction of the pre-lapse interval restored when
	// a relapsed card re-graduates.
	LapseMultiplier float64
	// Ease adjustments per grade. Ease never drops below MinEase.
	EaseAgainPenalty float64
	EaseHardPenalty  float64
	EaseEasyBonus    float64
	MinEase          float64
}

// DefaultConfig returns the documented default scheduling constants.
func DefaultConfig() Config {
	return Config{
		LearningSteps:      []time.Duration{1 * time.Minute, 10 * time.Minute},
		RelearnSteps:       []time.Duration{10 * time.Minute},
		GraduatingInterval: 1,
		EasyInterval:       4,
		EasyBonus:          1.3,
		HardFactor:         0.8,
		LapseMultiplier:    0.5,
		EaseAgainPenalty:   0.20,
		EaseHardPenalty:    0.15,
		EaseEasyBonus:      0.15,
		MinEase:            1.3,
	}
}

// Validate checks that the config describes a usable schedule.
func (c Config) Validate() error {
	if len(c.LearningSteps) == 0 {
		return fmt.Errorf("scheduler config: at least one learning step required")
	}
	if len(c.RelearnSteps) == 0 {
		return fmt.Errorf("scheduler config: at least one relearn step required")
	}
	if c.GraduatingInterval < 1 || c.EasyInterval < 1 {
		return fmt.Errorf("scheduler config: graduation intervals must be at least 1 day")
	}
	if c.HardFactor <= 0 || c.HardFactor >= 1 {
		return fmt.Errorf("scheduler config: hard factor must be in (0, 1)")
	}
	if c.LapseMultiplier <= 0 || c.LapseMultiplier > 1 {
		return fmt.Errorf("scheduler config: lapse multiplier must be in (0, 1]")
	}
	if c.MinEase <= 0 {
		return fmt.Errorf("scheduler config: minimum ease must be positive")
	}
	return nil
}

// Apply computes the next scheduling state for a card given a review grade.
// It is a pure function: the input card is not modified, no I/O happens, and
// concurrent calls are safe. The only error it produces for well-formed cards
// is INVALID_GRADE, raised before any calculation.
func Apply(card models.Card, grade models.Grade, now time.Time, cfg Config) (models.Card, error) {
	if !grade.Valid() {
		return models.Card{}, errors.NewInvalidGradeError(grade)
	}

	switch card.State {
	case models.CardStateNew:
		applyNew(&card, grade, now, cfg)
	case models.CardStateLearning:
		applyLearning(&card, grade, now, cfg)
	case models.CardStateReview:
		applyReview(&card, grade, now, cfg)
	case models.CardStateRelapsed:
		applyRelapsed(&card, grade, now, cfg)
	default:
		return models.Card{}, errors.NewInvariantError(
			fmt.Sprintf("card %s/%d has unknown state %q", card.NoteID, card.CardNum, card.State))
	}

	if err := checkInvariants(card, cfg); err != nil {
		return models.Card{}, err
	}
	return card, nil
}

// applyNew moves a card out of New. Every card passes through Learning first,
// whatever the grade.
func applyNew(card *models.Card, grade models.Grade, now time.Time, cfg Config) {
	card.State = models.CardStateLearning
	card.Interval = 0

	switch grade {
	case models.GradeAgain, models.GradeHard:
		card.Steps = len(cfg.LearningSteps)
	case models.GradeGood:
		card.Steps = len(cfg.LearningSteps) - 1
		if card.Steps < 1 {
			card.Steps = 1
		}
	case models.GradeEasy:
		// Fast-track to the final learning step.
		card.Steps = 1
	}
	setStepDue(card, now, cfg.LearningSteps)
}

func applyLearning(card *models.Card, grade models.Grade, now time.Time, cfg Config) {
	switch grade {
	case models.GradeAgain, models.GradeHard:
		// Back to the first learning step; ease untouched.
		card.Interval = 0
		card.Steps = len(cfg.LearningSteps)
		setStepDue(card, now, cfg.LearningSteps)
	case models.GradeGood:
		card.Steps--
		if card.Steps > 0 {
			setStepDue(card, now, cfg.LearningSteps)
		} else {
			graduate(card, cfg.GraduatingInterval, now)
		}
	case models.GradeEasy:
		graduate(card, cfg.EasyInterval, now)
	}
}

func applyReview(card *models.Card, grade models.Grade, now time.Time, cfg Config) {
	switch grade {
	case models.GradeAgain:
		// Lapse: remember a reduced interval for re-graduation, drop into
		// relearning right away.
		card.LapseInterval = atLeastOne(math.Round(float64(card.Interval) * cfg.LapseMultiplier))
		card.Interval = 0
		card.Ease = clampEase(card.Ease-cfg.EaseAgainPenalty, cfg.MinEase)
		card.State = models.CardStateRelapsed
		card.Steps = len(cfg.RelearnSteps)
		setStepDue(card, now, cfg.RelearnSteps)
	case models.GradeHard:
		card.Interval = atLeastOne(math.Round(float64(card.Interval) * cfg.HardFactor))
		card.Ease = clampEase(card.Ease-cfg.EaseHardPenalty, cfg.MinEase)
		setIntervalDue(card, now)
	case models.GradeGood:
		card.Interval = atLeastOne(math.Round(float64(card.Interval) * card.Ease))
		setIntervalDue(card, now)
	case models.GradeEasy:
		// Interval growth uses the pre-adjustment ease.
		card.Interval = atLeastOne(math.Round(float64(card.Interval) * card.Ease * cfg.EasyBonus))
		card.Ease = clampEase(card.Ease+cfg.EaseEasyBonus, cfg.MinEase)
		setIntervalDue(card, now)
	}
}

func applyRelapsed(card *models.Card, grade models.Grade, now time.Time, cfg Config) {
	switch grade {
	case models.GradeAgain, models.GradeHard:
		card.Steps = len(cfg.RelearnSteps)
		setStepDue(card, now, cfg.RelearnSteps)
	case models.GradeGood:
		card.Steps--
		if card.Steps > 0 {
			setStepDue(card, now, cfg.RelearnSteps)
		} else {
			regraduate(card, now)
		}
	case models.GradeEasy:
		regraduate(card, now)
	}
}

func graduate(card *models.Card, intervalDays int, now time.Time) {
	card.State = models.CardStateReview
	card.Interval = intervalDays
	card.Steps = 0
	setIntervalDue(card, now)
}

func regraduate(card *models.Card, now time.Time) {
	card.State = models.CardStateReview
	card.Interval = card.LapseInterval
	if card.Interval < 1 {
		card.Interval = 1
	}
	card.LapseInterval = 0
	card.Steps = 0
	setIntervalDue(card, now)
}

// setStepDue schedules the card for its current learning/relearning step.
// card.Steps counts remaining steps, so the step about to be waited on is
// indexed from the end.
func setStepDue(card *models.Card, now time.Time, steps []time.Duration) {
	idx := len(steps) - card.Steps
	if idx < 0 {
		idx = 0
	}
	if idx >= len(steps) {
		idx = len(steps) - 1
	}
	due := now.Add(steps[idx])
	card.Due = &due
}

func setIntervalDue(card *models.Card, now time.Time) {
	due := now.Add(time.Duration(card.Interval) * 24 * time.Hour)
	card.Due = &due
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

func clampEase(ease, min float64) float64 {
	if ease < min {
		return min
	}
	return ease
}

// checkInvariants catches a computed state no grade transition should ever
// produce. A failure here is a programming defect.
func checkInvariants(card models.Card, cfg Config) error {
	if card.Ease < cfg.MinEase {
		return errors.NewInvariantError(
			fmt.Sprintf("ease %.3f below floor %.2f for card %s/%d", card.Ease, cfg.MinEase, card.NoteID, card.CardNum))
	}
	if card.Interval < 0 {
		return errors.NewInvariantError(
			fmt.Sprintf("negative interval %d for card %s/%d", card.Interval, card.NoteID, card.CardNum))
	}
	if card.State != models.CardStateNew && card.Due == nil {
		return errors.NewInvariantError(
			fmt.Sprintf("card %s/%d left %s without a due date", card.NoteID, card.CardNum, card.State))
	}
	return nil
}
