package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

const cardColumns = `
	id, owner_id, deck_id,
	text_in_known_language, text_in_learning_language,
	description_in_known_language, description_in_learning_language,
	mastery_score, is_new, last_reviewed_at, sound_urls, cefr_level,
	created_at, updated_at`

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.Querier
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.Querier, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// Create implements store.CardStore.Create.
// The insert only happens when the target deck belongs to the card owner.
func (s *PostgresCardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		WHERE EXISTS (SELECT 1 FROM decks WHERE id = $3 AND owner_id = $2)
	`
	result, err := s.db.ExecContext(ctx, query,
		card.ID,
		card.OwnerID,
		card.DeckID,
		card.TextInKnownLanguage,
		card.TextInLearningLanguage,
		card.DescriptionInKnownLanguage,
		card.DescriptionInLearningLanguage,
		card.MasteryScore,
		card.IsNew,
		card.LastReviewedAt,
		soundURLsValue(card.SoundURLs),
		string(card.CEFRLevel),
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	notFound := fmt.Errorf("%w: deck with ID %s not found", store.ErrInvalidEntity, card.DeckID)
	if err := CheckRowsAffected(result, notFound); err != nil {
		log.Warn("card deck not found for owner",
			slog.String("card_id", card.ID.String()),
			slog.String("deck_id", card.DeckID.String()))
		return err
	}

	log.Info("card created successfully",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", card.DeckID.String()))
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *PostgresCardStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving card by ID", slog.String("card_id", id.String()))

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND owner_id = $2`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	return card, nil
}

// GetForUpdate implements store.CardStore.GetForUpdate.
// It must run on a transaction-bound Querier; outside one the lock is released
// as soon as the statement completes.
func (s *PostgresCardStore) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("locking card for update", slog.String("card_id", id.String()))

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 AND owner_id = $2 FOR UPDATE`
	card, err := scanCard(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to lock card for update",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	return card, nil
}

// UpdateText implements store.CardStore.UpdateText.
func (s *PostgresCardStore) UpdateText(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE cards
		SET text_in_known_language = $1,
			text_in_learning_language = $2,
			description_in_known_language = $3,
			description_in_learning_language = $4,
			cefr_level = $5,
			updated_at = $6
		WHERE id = $7 AND owner_id = $8
	`
	result, err := s.db.ExecContext(ctx, query,
		card.TextInKnownLanguage,
		card.TextInLearningLanguage,
		card.DescriptionInKnownLanguage,
		card.DescriptionInLearningLanguage,
		string(card.CEFRLevel),
		card.UpdatedAt,
		card.ID,
		card.OwnerID,
	)
	if err != nil {
		log.Error("failed to update card text",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Debug("card text updated", slog.String("card_id", card.ID.String()))
	return nil
}

// UpdateSoundURLs implements store.CardStore.UpdateSoundURLs.
func (s *PostgresCardStore) UpdateSoundURLs(ctx context.Context, ownerID, id uuid.UUID, refs []string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE cards SET sound_urls = $1, updated_at = $2 WHERE id = $3 AND owner_id = $4`
	result, err := s.db.ExecContext(ctx, query, soundURLsValue(refs), time.Now().UTC(), id, ownerID)
	if err != nil {
		log.Error("failed to update card sound urls",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Debug("card sound urls updated",
		slog.String("card_id", id.String()),
		slog.Int("sound_count", len(refs)))
	return nil
}

// UpdateMastery implements store.CardStore.UpdateMastery.
func (s *PostgresCardStore) UpdateMastery(
	ctx context.Context,
	ownerID, id uuid.UUID,
	score float64,
	lastReviewedAt time.Time,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if score < domain.MinMasteryScore || score > domain.MaxMasteryScore {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrMasteryOutOfRange)
	}

	query := `
		UPDATE cards
		SET mastery_score = $1, last_reviewed_at = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5
	`
	result, err := s.db.ExecContext(ctx, query, score, lastReviewedAt, time.Now().UTC(), id, ownerID)
	if err != nil {
		log.Error("failed to update card mastery",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Debug("card mastery updated",
		slog.String("card_id", id.String()),
		slog.Float64("mastery_score", score))
	return nil
}

// MarkLearned implements store.CardStore.MarkLearned.
func (s *PostgresCardStore) MarkLearned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE cards
		SET is_new = FALSE, updated_at = $1
		WHERE owner_id = $2 AND id = ANY($3::uuid[]) AND is_new
	`
	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), ownerID, uuidStrings(ids))
	if err != nil {
		log.Error("failed to mark cards learned", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("cards marked learned",
		slog.String("owner_id", ownerID.String()),
		slog.Int64("changed", n))
	return int(n), nil
}

// Delete implements store.CardStore.Delete.
func (s *PostgresCardStore) Delete(ctx context.Context, ownerID, id uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cards WHERE id = $1 AND owner_id = $2 RETURNING sound_urls`
	refs := []string{}
	if err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(textArray(&refs)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, MapError(err)
	}

	log.Info("card deleted", slog.String("card_id", id.String()))
	return refs, nil
}

// DeleteByDecks implements store.CardStore.DeleteByDecks.
func (s *PostgresCardStore) DeleteByDecks(ctx context.Context, ownerID uuid.UUID, deckIDs []uuid.UUID) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	refs := []string{}
	if len(deckIDs) == 0 {
		return refs, nil
	}

	query := `DELETE FROM cards WHERE owner_id = $1 AND deck_id = ANY($2::uuid[]) RETURNING sound_urls`
	rows, err := s.db.QueryContext(ctx, query, ownerID, uuidStrings(deckIDs))
	if err != nil {
		log.Error("failed to delete cards by decks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	deleted := 0
	for rows.Next() {
		var cardRefs []string
		if err := rows.Scan(textArray(&cardRefs)); err != nil {
			return nil, err
		}
		refs = append(refs, cardRefs...)
		deleted++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Info("cards deleted by decks",
		slog.Int("deck_count", len(deckIDs)),
		slog.Int("card_count", deleted))
	return refs, nil
}

// ListByDeck implements store.CardStore.ListByDeck.
func (s *PostgresCardStore) ListByDeck(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE owner_id = $1 AND deck_id = $2
		ORDER BY created_at, id`
	return s.queryCards(ctx, "list_by_deck", query, ownerID, deckID)
}

// FindNew implements store.CardStore.FindNew.
func (s *PostgresCardStore) FindNew(ctx context.Context, ownerID, deckID uuid.UUID, limit int) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE owner_id = $1 AND deck_id = $2 AND is_new
		ORDER BY created_at, id
		LIMIT $3`
	return s.queryCards(ctx, "find_new", query, ownerID, deckID, limit)
}

// FindDueForReview implements store.CardStore.FindDueForReview.
func (s *PostgresCardStore) FindDueForReview(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
	dueBefore time.Time,
) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE owner_id = $1 AND deck_id = $2
			AND NOT is_new AND mastery_score < 100 AND last_reviewed_at < $3
		ORDER BY created_at, id`
	return s.queryCards(ctx, "find_due_for_review", query, ownerID, deckID, dueBefore)
}

// FindReviewed implements store.CardStore.FindReviewed.
func (s *PostgresCardStore) FindReviewed(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE owner_id = $1 AND deck_id = $2 AND NOT is_new
		ORDER BY created_at, id`
	return s.queryCards(ctx, "find_reviewed", query, ownerID, deckID)
}

// FindMastered implements store.CardStore.FindMastered.
func (s *PostgresCardStore) FindMastered(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards
		WHERE owner_id = $1 AND deck_id = $2 AND NOT is_new AND mastery_score >= 100
		ORDER BY created_at, id`
	return s.queryCards(ctx, "find_mastered", query, ownerID, deckID)
}

// CountSoundReferences implements store.CardStore.CountSoundReferences.
func (s *PostgresCardStore) CountSoundReferences(ctx context.Context, ref string) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	query := `SELECT COUNT(*) FROM cards WHERE $1 = ANY(sound_urls)`
	if err := s.db.QueryRowContext(ctx, query, ref).Scan(&count); err != nil {
		log.Error("failed to count sound references",
			slog.String("error", err.Error()),
			slog.String("ref", ref))
		return 0, MapError(err)
	}
	return count, nil
}

// DeckStats implements store.CardStore.DeckStats.
func (s *PostgresCardStore) DeckStats(
	ctx context.Context,
	ownerID uuid.UUID,
	deckIDs []uuid.UUID,
	dueBefore time.Time,
) (map[uuid.UUID]domain.DeckStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats := make(map[uuid.UUID]domain.DeckStats, len(deckIDs))
	for _, id := range deckIDs {
		stats[id] = domain.DeckStats{DeckID: id}
	}
	if len(deckIDs) == 0 {
		return stats, nil
	}

	query := `
		SELECT deck_id,
			COUNT(*),
			COUNT(*) FILTER (WHERE is_new),
			COUNT(*) FILTER (WHERE NOT is_new AND mastery_score < 100),
			COUNT(*) FILTER (WHERE NOT is_new AND mastery_score < 100 AND last_reviewed_at < $3),
			COUNT(*) FILTER (WHERE NOT is_new AND mastery_score >= 100),
			COALESCE(AVG(mastery_score), 0)
		FROM cards
		WHERE owner_id = $1 AND deck_id = ANY($2::uuid[])
		GROUP BY deck_id
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID, uuidStrings(deckIDs), dueBefore)
	if err != nil {
		log.Error("failed to aggregate deck stats", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	for rows.Next() {
		var ds domain.DeckStats
		if err := rows.Scan(
			&ds.DeckID,
			&ds.TotalCards,
			&ds.NewCards,
			&ds.InProgressCards,
			&ds.NeedsReviewCards,
			&ds.MasteredCards,
			&ds.AverageMastery,
		); err != nil {
			return nil, err
		}
		stats[ds.DeckID] = ds
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// CountByFolder implements store.CardStore.CountByFolder.
func (s *PostgresCardStore) CountByFolder(ctx context.Context, ownerID uuid.UUID) (map[uuid.UUID]int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT d.folder_id, COUNT(c.id)
		FROM cards c
		JOIN decks d ON d.id = c.deck_id
		WHERE c.owner_id = $1 AND d.folder_id IS NOT NULL
		GROUP BY d.folder_id
	`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to count cards by folder", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var folderID uuid.UUID
		var count int
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, err
		}
		counts[folderID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *PostgresCardStore) queryCards(ctx context.Context, op, query string, args ...any) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards",
			slog.String("error", err.Error()),
			slog.String("operation", op))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row",
				slog.String("error", err.Error()),
				slog.String("operation", op))
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	log.Debug("cards queried",
		slog.String("operation", op),
		slog.Int("count", len(cards)))
	return cards, nil
}

func scanCard(row rowScanner) (*domain.Card, error) {
	var card domain.Card
	var cefr string
	err := row.Scan(
		&card.ID,
		&card.OwnerID,
		&card.DeckID,
		&card.TextInKnownLanguage,
		&card.TextInLearningLanguage,
		&card.DescriptionInKnownLanguage,
		&card.DescriptionInLearningLanguage,
		&card.MasteryScore,
		&card.IsNew,
		&card.LastReviewedAt,
		textArray(&card.SoundURLs),
		&cefr,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	card.CEFRLevel = domain.CEFRLevel(cefr)
	return &card, nil
}

// soundURLsValue makes sure an empty list is stored as '{}' rather than NULL.
func soundURLsValue(refs []string) []string {
	if refs == nil {
		return []string{}
	}
	return refs
}
