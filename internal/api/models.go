package api

import (
	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/service"
)

// CreateFolderRequest is the payload of POST /folders. A nil ParentID
// creates a top-level folder.
type CreateFolderRequest struct {
	Name     string     `json:"name"      validate:"required"`
	ParentID *uuid.UUID `json:"parent_id"`
}

// RenameRequest is the payload of PATCH /folders/{id} and PATCH /decks/{id}.
type RenameRequest struct {
	Name string `json:"name" validate:"required"`
}

// MoveFolderRequest is the payload of POST /folders/{id}/move. A nil
// ParentID moves the folder to the top level.
type MoveFolderRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// MoveDeckRequest is the payload of POST /decks/{id}/move. A nil FolderID
// moves the deck to the top level.
type MoveDeckRequest struct {
	FolderID *uuid.UUID `json:"folder_id"`
}

// CreateDeckRequest is the payload of POST /decks.
type CreateDeckRequest struct {
	Name                 string     `json:"name"                   validate:"required"`
	FolderID             *uuid.UUID `json:"folder_id"`
	KnownLanguageCode    string     `json:"known_language_code"    validate:"required"`
	LearningLanguageCode string     `json:"learning_language_code" validate:"required"`
}

func (r CreateDeckRequest) toInput() service.CreateDeckInput {
	return service.CreateDeckInput{
		Name:                 r.Name,
		FolderID:             r.FolderID,
		KnownLanguageCode:    r.KnownLanguageCode,
		LearningLanguageCode: r.LearningLanguageCode,
	}
}

// CardTextRequest carries the editable text of a card.
type CardTextRequest struct {
	TextInKnownLanguage           string `json:"text_in_known_language"           validate:"required"`
	TextInLearningLanguage        string `json:"text_in_learning_language"        validate:"required"`
	DescriptionInKnownLanguage    string `json:"description_in_known_language"`
	DescriptionInLearningLanguage string `json:"description_in_learning_language"`
	CEFRLevel                     string `json:"cefr_level"                       validate:"omitempty,oneof=A1 A2 B1 B2 C1 C2"`
}

func (r CardTextRequest) toCardText() domain.CardText {
	return domain.CardText{
		TextInKnownLanguage:           r.TextInKnownLanguage,
		TextInLearningLanguage:        r.TextInLearningLanguage,
		DescriptionInKnownLanguage:    r.DescriptionInKnownLanguage,
		DescriptionInLearningLanguage: r.DescriptionInLearningLanguage,
		CEFRLevel:                     domain.CEFRLevel(r.CEFRLevel),
	}
}

// CreateCardRequest is the payload of POST /cards.
type CreateCardRequest struct {
	DeckID uuid.UUID `json:"deck_id" validate:"required"`
	CardTextRequest
}

// FinishLearningSessionRequest is the payload of POST /learning-session/finish.
type FinishLearningSessionRequest struct {
	CardIDs []uuid.UUID `json:"card_ids" validate:"required,min=1"`
}

// FinishLearningSessionResponse reports how many cards changed state.
type FinishLearningSessionResponse struct {
	Learned int `json:"learned"`
}

// ReviewAnswerRequest is the payload of POST /cards/{id}/review.
type ReviewAnswerRequest struct {
	IsCorrect *bool  `json:"is_correct_answer" validate:"required"`
	Strategy  string `json:"type_of_strategy"  validate:"required"`
}

// CardListResponse wraps the cards of a session.
type CardListResponse struct {
	Cards []*domain.Card `json:"cards"`
}

// LanguageListResponse wraps the language catalog.
type LanguageListResponse struct {
	Languages []*domain.Language `json:"languages"`
}
