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

const folderColumns = `id, owner_id, name, parent_id, created_at, updated_at`

// PostgresFolderStore implements the store.FolderStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFolderStore struct {
	db     store.Querier
	logger *slog.Logger
}

// NewPostgresFolderStore creates a new PostgreSQL implementation of the FolderStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresFolderStore(db store.Querier, logger *slog.Logger) *PostgresFolderStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFolderStore{
		db:     db,
		logger: logger.With(slog.String("component", "folder_store")),
	}
}

// Ensure PostgresFolderStore implements store.FolderStore interface
var _ store.FolderStore = (*PostgresFolderStore)(nil)

// Create implements store.FolderStore.Create.
// The insert only happens when the parent, if any, belongs to the same owner.
func (s *PostgresFolderStore) Create(ctx context.Context, folder *domain.Folder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO folders (` + folderColumns + `)
		SELECT $1, $2, $3, $4::uuid, $5, $6
		WHERE $4::uuid IS NULL
			OR EXISTS (SELECT 1 FROM folders WHERE id = $4::uuid AND owner_id = $2)
	`
	result, err := s.db.ExecContext(ctx, query,
		folder.ID,
		folder.OwnerID,
		folder.Name,
		nullableUUID(folder.ParentID),
		folder.CreatedAt,
		folder.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create folder",
			slog.String("error", err.Error()),
			slog.String("folder_id", folder.ID.String()))
		return MapUniqueViolation(err, store.ErrFolderNameExists)
	}

	if err := CheckRowsAffected(result, store.ErrFolderNotFound); err != nil {
		log.Debug("parent folder not found for owner", slog.String("folder_id", folder.ID.String()))
		return err
	}

	log.Info("folder created successfully",
		slog.String("folder_id", folder.ID.String()),
		slog.String("owner_id", folder.OwnerID.String()))
	return nil
}

// GetByID implements store.FolderStore.GetByID.
func (s *PostgresFolderStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Folder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + folderColumns + ` FROM folders WHERE id = $1 AND owner_id = $2`
	folder, err := scanFolder(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("folder not found", slog.String("folder_id", id.String()))
			return nil, store.ErrFolderNotFound
		}
		log.Error("failed to get folder by ID",
			slog.String("error", err.Error()),
			slog.String("folder_id", id.String()))
		return nil, MapError(err)
	}
	return folder, nil
}

// ListByOwner implements store.FolderStore.ListByOwner.
func (s *PostgresFolderStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 ORDER BY name`
	return s.queryFolders(ctx, query, ownerID)
}

// ListChildren implements store.FolderStore.ListChildren.
func (s *PostgresFolderStore) ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*domain.Folder, error) {
	query := `SELECT ` + folderColumns + ` FROM folders
		WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2::uuid
		ORDER BY name`
	return s.queryFolders(ctx, query, ownerID, nullableUUID(parentID))
}

// ExistsByName implements store.FolderStore.ExistsByName.
func (s *PostgresFolderStore) ExistsByName(
	ctx context.Context,
	ownerID uuid.UUID,
	parentID *uuid.UUID,
	name string,
	excludeID *uuid.UUID,
) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM folders
			WHERE owner_id = $1
				AND parent_id IS NOT DISTINCT FROM $2::uuid
				AND LOWER(name) = LOWER($3)
				AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`
	var exists bool
	err := s.db.QueryRowContext(ctx, query, ownerID, nullableUUID(parentID), name, nullableUUID(excludeID)).Scan(&exists)
	if err != nil {
		log.Error("failed to check folder name", slog.String("error", err.Error()))
		return false, MapError(err)
	}
	return exists, nil
}

// Update implements store.FolderStore.Update.
func (s *PostgresFolderStore) Update(ctx context.Context, folder *domain.Folder) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE folders
		SET name = $1, parent_id = $2, updated_at = $3
		WHERE id = $4 AND owner_id = $5
	`
	result, err := s.db.ExecContext(ctx, query,
		folder.Name,
		nullableUUID(folder.ParentID),
		folder.UpdatedAt,
		folder.ID,
		folder.OwnerID,
	)
	if err != nil {
		log.Error("failed to update folder",
			slog.String("error", err.Error()),
			slog.String("folder_id", folder.ID.String()))
		return MapUniqueViolation(err, store.ErrFolderNameExists)
	}

	if err := CheckRowsAffected(result, store.ErrFolderNotFound); err != nil {
		return err
	}

	log.Info("folder updated", slog.String("folder_id", folder.ID.String()))
	return nil
}

// DeleteMany implements store.FolderStore.DeleteMany.
func (s *PostgresFolderStore) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(ids) == 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM folders WHERE owner_id = $1 AND id = ANY($2::uuid[])`,
		ownerID, uuidStrings(ids))
	if err != nil {
		log.Error("failed to delete folders", slog.String("error", err.Error()))
		return 0, MapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	log.Info("folders deleted", slog.Int64("count", n))
	return int(n), nil
}

func (s *PostgresFolderStore) queryFolders(ctx context.Context, query string, args ...any) ([]*domain.Folder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query folders", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	folders := []*domain.Folder{}
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, err
		}
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return folders, nil
}

func scanFolder(row rowScanner) (*domain.Folder, error) {
	var folder domain.Folder
	var parentID uuid.NullUUID
	if err := row.Scan(
		&folder.ID,
		&folder.OwnerID,
		&folder.Name,
		&parentID,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	); err != nil {
		return nil, err
	}
	folder.ParentID = scanNullableUUID(parentID)
	return &folder, nil
}
