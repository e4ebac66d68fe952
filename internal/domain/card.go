package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Mastery score bounds. A card at MaxMasteryScore is mastered.
const (
	MinMasteryScore = 0.0
	MaxMasteryScore = 100.0
)

// Card-specific validation errors
var (
	// ErrCardIDEmpty is returned when a card ID is empty or nil.
	ErrCardIDEmpty = errors.New("card ID cannot be empty")

	// ErrCardOwnerIDEmpty is returned when a card's owner ID is empty or nil.
	ErrCardOwnerIDEmpty = errors.New("card owner ID cannot be empty")

	// ErrCardDeckIDEmpty is returned when a card's deck ID is empty or nil.
	ErrCardDeckIDEmpty = errors.New("card deck ID cannot be empty")

	// ErrMasteryOutOfRange is returned when a mastery score falls outside [0,100].
	ErrMasteryOutOfRange = errors.New("mastery score out of range")

	// ErrNewCardHasProgress is returned when a card flagged as new carries a nonzero score.
	ErrNewCardHasProgress = errors.New("new card cannot have mastery progress")

	// ErrInvalidCEFRLevel is returned for CEFR tags outside A1..C2.
	ErrInvalidCEFRLevel = errors.New("invalid CEFR level")
)

// CEFRLevel is the optional proficiency tag attached to a card.
type CEFRLevel string

// Valid CEFR levels.
const (
	CEFRLevelA1 CEFRLevel = "A1"
	CEFRLevelA2 CEFRLevel = "A2"
	CEFRLevelB1 CEFRLevel = "B1"
	CEFRLevelB2 CEFRLevel = "B2"
	CEFRLevelC1 CEFRLevel = "C1"
	CEFRLevelC2 CEFRLevel = "C2"
)

// IsValid reports whether l is empty (unset) or one of the six CEFR levels.
func (l CEFRLevel) IsValid() bool {
	switch l {
	case "", CEFRLevelA1, CEFRLevelA2, CEFRLevelB1, CEFRLevelB2, CEFRLevelC1, CEFRLevelC2:
		return true
	default:
		return false
	}
}

// Card is a single learning item: a term pair with its progress state and
// the audio references generated for the learning-language text.
type Card struct {
	ID                            uuid.UUID `json:"id"`
	OwnerID                       uuid.UUID `json:"owner_id"`
	DeckID                        uuid.UUID `json:"deck_id"`
	TextInKnownLanguage           string    `json:"text_in_known_language"`
	TextInLearningLanguage        string    `json:"text_in_learning_language"`
	DescriptionInKnownLanguage    string    `json:"description_in_known_language,omitempty"`
	DescriptionInLearningLanguage string    `json:"description_in_learning_language,omitempty"`
	MasteryScore                  float64   `json:"mastery_score"`
	IsNew                         bool      `json:"is_new"`
	LastReviewedAt                time.Time `json:"last_reviewed_at"`
	SoundURLs                     []string  `json:"sound_urls"`
	CEFRLevel                     CEFRLevel `json:"cefr_level,omitempty"`
	CreatedAt                     time.Time `json:"created_at"`
	UpdatedAt                     time.Time `json:"updated_at"`
}

// CardText carries the user editable text of a card.
type CardText struct {
	TextInKnownLanguage           string
	TextInLearningLanguage        string
	DescriptionInKnownLanguage    string
	DescriptionInLearningLanguage string
	CEFRLevel                     CEFRLevel
}

// NewCard creates a new card in deck deckID. The card starts new, with a zero
// mastery score, no audio and lastReviewedAt set to its creation time.
func NewCard(ownerID, deckID uuid.UUID, text CardText, limits Limits) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		DeckID:         deckID,
		MasteryScore:   MinMasteryScore,
		IsNew:          true,
		LastReviewedAt: now,
		SoundURLs:      []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := card.ApplyText(text, limits); err != nil {
		return nil, err
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// ApplyText validates text against limits and copies it onto the card.
// The card is left untouched when validation fails.
func (c *Card) ApplyText(text CardText, limits Limits) error {
	known, err := validateText("text_in_known_language", text.TextInKnownLanguage, limits.MaxWordLength, true)
	if err != nil {
		return err
	}
	learning, err := validateText("text_in_learning_language", text.TextInLearningLanguage, limits.MaxWordLength, true)
	if err != nil {
		return err
	}
	knownDesc, err := validateText(
		"description_in_known_language",
		text.DescriptionInKnownLanguage,
		limits.MaxDescriptionLength,
		false,
	)
	if err != nil {
		return err
	}
	learningDesc, err := validateText(
		"description_in_learning_language",
		text.DescriptionInLearningLanguage,
		limits.MaxDescriptionLength,
		false,
	)
	if err != nil {
		return err
	}
	if !text.CEFRLevel.IsValid() {
		return NewValidationError("cefr_level", "must be one of A1, A2, B1, B2, C1, C2", ErrInvalidCEFRLevel)
	}

	c.TextInKnownLanguage = known
	c.TextInLearningLanguage = learning
	c.DescriptionInKnownLanguage = knownDesc
	c.DescriptionInLearningLanguage = learningDesc
	c.CEFRLevel = text.CEFRLevel
	return nil
}

// Validate checks the structural invariants of the card.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrCardIDEmpty
	}

	if c.OwnerID == uuid.Nil {
		return ErrCardOwnerIDEmpty
	}

	if c.DeckID == uuid.Nil {
		return ErrCardDeckIDEmpty
	}

	if c.MasteryScore < MinMasteryScore || c.MasteryScore > MaxMasteryScore {
		return ErrMasteryOutOfRange
	}

	if c.IsNew && c.MasteryScore != MinMasteryScore {
		return ErrNewCardHasProgress
	}

	return nil
}

// IsMastered reports whether the card has reached the score ceiling.
func (c *Card) IsMastered() bool {
	return !c.IsNew && c.MasteryScore >= MaxMasteryScore
}

// IsReviewDue reports whether the review interval has elapsed since the
// card was last answered correctly.
func (c *Card) IsReviewDue(now time.Time, interval time.Duration) bool {
	return c.LastReviewedAt.Before(now.Add(-interval))
}

// IsReviewEligible reports whether the card belongs in a regular review session.
func (c *Card) IsReviewEligible(now time.Time, interval time.Duration) bool {
	return !c.IsNew && c.MasteryScore < MaxMasteryScore && c.IsReviewDue(now, interval)
}
