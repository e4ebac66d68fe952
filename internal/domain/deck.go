package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Deck-specific validation errors
var (
	// ErrDeckOwnerIDEmpty is returned when a deck's owner ID is empty or nil.
	ErrDeckOwnerIDEmpty = errors.New("deck owner ID cannot be empty")

	// ErrDeckLanguageEmpty is returned when either language code of a deck is missing.
	ErrDeckLanguageEmpty = errors.New("deck language code cannot be empty")
)

// Deck is a named collection of cards with a fixed known/learning language pair.
// A nil FolderID places the deck at the root.
type Deck struct {
	ID                   uuid.UUID  `json:"id"`
	OwnerID              uuid.UUID  `json:"owner_id"`
	Name                 string     `json:"name"`
	FolderID             *uuid.UUID `json:"folder_id,omitempty"`
	KnownLanguageCode    string     `json:"known_language_code"`
	LearningLanguageCode string     `json:"learning_language_code"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NewDeck creates a deck after validating its name and languages.
func NewDeck(
	ownerID uuid.UUID,
	name string,
	folderID *uuid.UUID,
	knownLanguageCode, learningLanguageCode string,
	limits Limits,
) (*Deck, error) {
	if ownerID == uuid.Nil {
		return nil, ErrDeckOwnerIDEmpty
	}

	trimmed, err := ValidateDeckName(name, limits)
	if err != nil {
		return nil, err
	}

	if knownLanguageCode == "" || learningLanguageCode == "" {
		return nil, NewValidationError("language_code", "both languages are required", ErrDeckLanguageEmpty)
	}

	now := time.Now().UTC()
	return &Deck{
		ID:                   uuid.New(),
		OwnerID:              ownerID,
		Name:                 trimmed,
		FolderID:             folderID,
		KnownLanguageCode:    knownLanguageCode,
		LearningLanguageCode: learningLanguageCode,
		CreatedAt:            now,
		UpdatedAt:            now,
	}, nil
}

// ValidateDeckName trims name and checks it against the configured limit.
func ValidateDeckName(name string, limits Limits) (string, error) {
	return validateText("name", name, limits.MaxDeckNameLength, true)
}

// DeckStats aggregates progress counters over the cards of one deck.
type DeckStats struct {
	DeckID           uuid.UUID `json:"deck_id"`
	TotalCards       int       `json:"number_of_cards"`
	NewCards         int       `json:"number_of_new_cards"`
	InProgressCards  int       `json:"number_of_cards_in_progress"`
	NeedsReviewCards int       `json:"number_of_cards_need_to_review"`
	MasteredCards    int       `json:"number_of_cards_learned"`
	AverageMastery   float64   `json:"average_mastery_score"`
}
