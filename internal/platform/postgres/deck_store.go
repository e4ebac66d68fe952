package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

const deckColumns = `id, owner_id, name, folder_id, known_language_code, learning_language_code, created_at, updated_at`

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.Querier
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.Querier, logger *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// Create implements store.DeckStore.Create.
// A sibling with the same name surfaces as store.ErrDeckNameExists.
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `INSERT INTO decks (` + deckColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.ExecContext(ctx, query,
		deck.ID,
		deck.OwnerID,
		deck.Name,
		nullableUUID(deck.FolderID),
		deck.KnownLanguageCode,
		deck.LearningLanguageCode,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapUniqueViolation(err, store.ErrDeckNameExists)
	}

	log.Info("deck created successfully",
		slog.String("deck_id", deck.ID.String()),
		slog.String("owner_id", deck.OwnerID.String()))
	return nil
}

// GetByID implements store.DeckStore.GetByID.
func (s *PostgresDeckStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = $1 AND owner_id = $2`
	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found", slog.String("deck_id", id.String()))
			return nil, store.ErrDeckNotFound
		}
		log.Error("failed to get deck by ID",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return nil, MapError(err)
	}
	return deck, nil
}

// ListByFolder implements store.DeckStore.ListByFolder.
func (s *PostgresDeckStore) ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks
		WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2::uuid
		ORDER BY name`
	return s.queryDecks(ctx, query, ownerID, nullableUUID(folderID))
}

// ListByFolders implements store.DeckStore.ListByFolders.
func (s *PostgresDeckStore) ListByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) ([]*domain.Deck, error) {
	if len(folderIDs) == 0 {
		return []*domain.Deck{}, nil
	}
	query := `SELECT ` + deckColumns + ` FROM decks
		WHERE owner_id = $1 AND folder_id = ANY($2::uuid[])
		ORDER BY name`
	return s.queryDecks(ctx, query, ownerID, uuidStrings(folderIDs))
}

// ExistsByName implements store.DeckStore.ExistsByName.
func (s *PostgresDeckStore) ExistsByName(
	ctx context.Context,
	ownerID uuid.UUID,
	folderID *uuid.UUID,
	name string,
	excludeID *uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM decks
			WHERE owner_id = $1
				AND folder_id IS NOT DISTINCT FROM $2::uuid
				AND LOWER(name) = LOWER($3)
				AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, ownerID, nullableUUID(folderID), name, nullableUUID(excludeID)).Scan(&exists)
	if err != nil {
		log.Error("failed to check deck name", slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return exists, nil
}

// Update implements store.DeckStore.Update.
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE decks
		SET name = $1, folder_id = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		deck.Name,
		nullableUUID(deck.FolderID),
		deck.UpdatedAt,
		deck.ID,
		deck.OwnerID,
	)
	if err != nil {
		log.Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return MapUniqueViolation(err, store.ErrDeckNameExists)
	}

	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Info("deck updated", slog.String("deck_id", deck.ID.String()))
	return nil
}

// Delete implements store.DeckStore.Delete.
func (s *PostgresDeckStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Info("deck deleted", slog.String("deck_id", id.String()))
	return nil
}

// DeleteMany implements store.DeckStore.DeleteMany.
func (s *PostgresDeckStore) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM decks WHERE owner_id = $1 AND id = ANY($2::uuid[])`,
		ownerID, uuidStrings(ids))
	if err != nil {
		log.Error("failed to delete decks", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *PostgresDeckStore) queryDecks(ctx context.Context, query string, args ...any) ([]*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query decks", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	decks := []*domain.Deck{}
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return decks, nil
}

func scanDeck(row rowScanner) (*domain.Deck, error) {
	var deck domain.Deck
	var folderID uuid.NullUUID
	err := row.Scan(
		&deck.ID,
		&deck.OwnerID,
		&deck.Name,
		&folderID,
		&deck.KnownLanguageCode,
		&deck.LearningLanguageCode,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	deck.FolderID = scanNullableUUID(folderID)
	return &deck, nil
}
