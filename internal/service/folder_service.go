package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// FolderService manages the folder hierarchy of an owner.
type FolderService interface {
	// Dashboard returns the root folders, each with its recursive card
	// count, and the root decks with their progress counters.
	Dashboard(ctx context.Context, ownerID uuid.UUID) (*DashboardView, error)

	// GetFolder returns a folder with its breadcrumbs, child folders and child decks.
	// Returns store.ErrFolderNotFound if the folder does not exist for the owner.
	GetFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*FolderView, error)

	// CreateFolder creates a folder under parentID, or at the root when parentID is nil.
	// Returns ErrParentNotFound, ErrNameConflict, or a validation error wrapping
	// domain.ErrFolderTooDeep when the new folder would exceed the depth bound.
	CreateFolder(ctx context.Context, ownerID uuid.UUID, name string, parentID *uuid.UUID) (*domain.Folder, error)

	// RenameFolder renames a folder. Returns store.ErrFolderNotFound or ErrNameConflict.
	RenameFolder(ctx context.Context, ownerID, folderID uuid.UUID, name string) (*domain.Folder, error)

	// MoveFolder reparents a folder. Returns ErrInvalidMove when the target is
	// the folder itself or one of its descendants, and domain.ErrFolderTooDeep
	// when the moved subtree would end up deeper than the depth bound.
	MoveFolder(ctx context.Context, ownerID, folderID uuid.UUID, targetParentID *uuid.UUID) (*domain.Folder, error)

	// DeleteFolder removes a folder with every descendant folder, deck and
	// card in one transaction, then releases the audio those cards held.
	DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) error
}

// folderServiceImpl implements the FolderService interface
type folderServiceImpl struct {
	tx       store.Transactor
	assets   AssetManager
	engine   mastery.Engine
	limits   domain.Limits
	maxDepth int
	now      func() time.Time
	logger   *slog.Logger
}

// Ensure folderServiceImpl implements FolderService
var _ FolderService = (*folderServiceImpl)(nil)

// NewFolderService creates a new FolderService.
// It returns an error if any of the required dependencies are nil.
func NewFolderService(
	tx store.Transactor,
	assets AssetManager,
	engine mastery.Engine,
	limits domain.Limits,
	maxDepth int,
	logger *slog.Logger,
) (FolderService, error) {
	if tx == nil {
		return nil, domain.NewValidationError("tx", "cannot be nil", domain.ErrValidation)
	}
	if assets == nil {
		return nil, domain.NewValidationError("assets", "cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, domain.NewValidationError("engine", "cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxDepth <= 0 {
		maxDepth = domain.DefaultMaxFolderDepth
	}

	return &folderServiceImpl{
		tx:       tx,
		assets:   assets,
		engine:   engine,
		limits:   limits,
		maxDepth: maxDepth,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "folder_service")),
	}, nil
}

func (s *folderServiceImpl) loadTree(ctx context.Context, folders store.FolderStore, ownerID uuid.UUID) (*domain.FolderTree, error) {
	all, err := folders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return domain.NewFolderTree(all).WithMaxDepth(s.maxDepth), nil
}

// checkDepth fails when placing a subtree of the given height under parentID
// would nest folders deeper than maxDepth.
func (s *folderServiceImpl) checkDepth(tree *domain.FolderTree, parentID uuid.UUID, height int) error {
	parentDepth, err := tree.Depth(parentID)
	if err != nil {
		return err
	}
	if parentDepth+height > s.maxDepth {
		return domain.NewValidationError("parent_id",
			fmt.Sprintf("folders cannot be nested more than %d levels deep", s.maxDepth),
			domain.ErrFolderTooDeep)
	}
	return nil
}

// Dashboard implements FolderService.Dashboard.
func (s *folderServiceImpl) Dashboard(ctx context.Context, ownerID uuid.UUID) (*DashboardView, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	stores := s.tx.Stores()

	tree, err := s.loadTree(ctx, stores.Folders, ownerID)
	if err != nil {
		return nil, NewFolderServiceError("dashboard", "failed to list folders", err)
	}
	counts, err := stores.Cards.CountByFolder(ctx, ownerID)
	if err != nil {
		return nil, NewFolderServiceError("dashboard", "failed to count cards", err)
	}
	folders, err := summarizeFolders(tree, tree.Roots(), counts)
	if err != nil {
		return nil, NewFolderServiceError("dashboard", "failed to walk folder tree", err)
	}

	decks, err := stores.Decks.ListByFolder(ctx, ownerID, nil)
	if err != nil {
		return nil, NewFolderServiceError("dashboard", "failed to list decks", err)
	}
	deckSummaries, err := summarizeDecks(ctx, stores.Cards, ownerID, decks, s.engine.DueCutoff(s.now()))
	if err != nil {
		return nil, NewFolderServiceError("dashboard", "failed to aggregate deck stats", err)
	}

	log.Debug("dashboard loaded",
		slog.String("owner_id", ownerID.String()),
		slog.Int("folders", len(folders)),
		slog.Int("decks", len(deckSummaries)))

	return &DashboardView{Folders: folders, Decks: deckSummaries}, nil
}

// GetFolder implements FolderService.GetFolder.
func (s *folderServiceImpl) GetFolder(ctx context.Context, ownerID, folderID uuid.UUID) (*FolderView, error) {
	stores := s.tx.Stores()

	folder, err := stores.Folders.GetByID(ctx, ownerID, folderID)
	if err != nil {
		return nil, err
	}

	tree, err := s.loadTree(ctx, stores.Folders, ownerID)
	if err != nil {
		return nil, NewFolderServiceError("get_folder", "failed to list folders", err)
	}
	crumbs, err := tree.Breadcrumbs(folderID)
	if err != nil {
		return nil, NewFolderServiceError("get_folder", "failed to build breadcrumbs", err)
	}

	counts, err := stores.Cards.CountByFolder(ctx, ownerID)
	if err != nil {
		return nil, NewFolderServiceError("get_folder", "failed to count cards", err)
	}
	children, err := summarizeFolders(tree, tree.Children(&folderID), counts)
	if err != nil {
		return nil, NewFolderServiceError("get_folder", "failed to walk folder tree", err)
	}

	decks, err := stores.Decks.ListByFolder(ctx, ownerID, &folderID)
	if err != nil {
		return nil, NewFolderServiceError("get_folder", "failed to list decks", err)
	}
	deckSummaries, err := summarizeDecks(ctx, stores.Cards, ownerID, decks, s.engine.DueCutoff(s.now()))
	if err != nil {
		return nil, NewFolderServiceError("get_folder", "failed to aggregate deck stats", err)
	}

	return &FolderView{
		Folder:      folder,
		Breadcrumbs: crumbs,
		Folders:     children,
		Decks:       deckSummaries,
	}, nil
}

// CreateFolder implements FolderService.CreateFolder.
func (s *folderServiceImpl) CreateFolder(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
	parentID *uuid.UUID,
) (*domain.Folder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	folder, err := domain.NewFolder(ownerID, name, parentID, s.limits)
	if err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		if parentID != nil {
			if _, err := st.Folders.GetByID(ctx, ownerID, *parentID); err != nil {
				if errors.Is(err, store.ErrFolderNotFound) {
					return ErrParentNotFound
				}
				return err
			}
			tree, err := s.loadTree(ctx, st.Folders, ownerID)
			if err != nil {
				return err
			}
			if err := s.checkDepth(tree, *parentID, 1); err != nil {
				return err
			}
		}

		taken, err := st.Folders.ExistsByName(ctx, ownerID, parentID, folder.Name, nil)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameConflict
		}

		return st.Folders.Create(ctx, folder)
	})
	if err != nil {
		return nil, mapFolderWriteError("create_folder", err)
	}

	log.Info("folder created",
		slog.String("owner_id", ownerID.String()),
		slog.String("folder_id", folder.ID.String()))
	return folder, nil
}

// RenameFolder implements FolderService.RenameFolder.
func (s *folderServiceImpl) RenameFolder(
	ctx context.Context,
	ownerID, folderID uuid.UUID,
	name string,
) (*domain.Folder, error) {
	trimmed, err := domain.ValidateFolderName(name, s.limits)
	if err != nil {
		return nil, err
	}

	var folder *domain.Folder
	err = s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		f, err := st.Folders.GetByID(ctx, ownerID, folderID)
		if err != nil {
			return err
		}

		taken, err := st.Folders.ExistsByName(ctx, ownerID, f.ParentID, trimmed, &f.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameConflict
		}

		f.Name = trimmed
		f.UpdatedAt = s.now().UTC()
		if err := st.Folders.Update(ctx, f); err != nil {
			return err
		}
		folder = f
		return nil
	})
	if err != nil {
		return nil, mapFolderWriteError("rename_folder", err)
	}
	return folder, nil
}

// MoveFolder implements FolderService.MoveFolder.
func (s *folderServiceImpl) MoveFolder(
	ctx context.Context,
	ownerID, folderID uuid.UUID,
	targetParentID *uuid.UUID,
) (*domain.Folder, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var folder *domain.Folder
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		f, err := st.Folders.GetByID(ctx, ownerID, folderID)
		if err != nil {
			return err
		}

		if targetParentID != nil {
			if *targetParentID == folderID {
				return ErrInvalidMove
			}
			if _, err := st.Folders.GetByID(ctx, ownerID, *targetParentID); err != nil {
				if errors.Is(err, store.ErrFolderNotFound) {
					return ErrParentNotFound
				}
				return err
			}

			tree, err := s.loadTree(ctx, st.Folders, ownerID)
			if err != nil {
				return err
			}
			inside, err := tree.IsWithinSubtree(folderID, *targetParentID)
			if err != nil {
				return err
			}
			if inside {
				return ErrInvalidMove
			}
			height, err := tree.Height(folderID)
			if err != nil {
				return err
			}
			if err := s.checkDepth(tree, *targetParentID, height); err != nil {
				return err
			}
		}

		taken, err := st.Folders.ExistsByName(ctx, ownerID, targetParentID, f.Name, &f.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrNameConflict
		}

		f.ParentID = targetParentID
		f.UpdatedAt = s.now().UTC()
		if err := st.Folders.Update(ctx, f); err != nil {
			return err
		}
		folder = f
		return nil
	})
	if err != nil {
		return nil, mapFolderWriteError("move_folder", err)
	}

	log.Info("folder moved",
		slog.String("owner_id", ownerID.String()),
		slog.String("folder_id", folderID.String()))
	return folder, nil
}

// DeleteFolder implements FolderService.DeleteFolder.
func (s *folderServiceImpl) DeleteFolder(ctx context.Context, ownerID, folderID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var refs []string
	var folderCount, deckCount int
	err := s.tx.InTx(ctx, func(ctx context.Context, st store.Stores) error {
		if _, err := st.Folders.GetByID(ctx, ownerID, folderID); err != nil {
			return err
		}

		tree, err := s.loadTree(ctx, st.Folders, ownerID)
		if err != nil {
			return err
		}
		folderIDs, err := tree.Subtree(folderID)
		if err != nil {
			return err
		}

		decks, err := st.Decks.ListByFolders(ctx, ownerID, folderIDs)
		if err != nil {
			return err
		}
		deckIDs := make([]uuid.UUID, len(decks))
		for i, d := range decks {
			deckIDs[i] = d.ID
		}

		if len(deckIDs) > 0 {
			refs, err = st.Cards.DeleteByDecks(ctx, ownerID, deckIDs)
			if err != nil {
				return err
			}
			if deckCount, err = st.Decks.DeleteMany(ctx, ownerID, deckIDs); err != nil {
				return err
			}
		}

		folderCount, err = st.Folders.DeleteMany(ctx, ownerID, folderIDs)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrFolderNotFound) {
			return err
		}
		return NewFolderServiceError("delete_folder", "failed to delete folder subtree", err)
	}

	log.Info("folder subtree deleted",
		slog.String("owner_id", ownerID.String()),
		slog.String("folder_id", folderID.String()),
		slog.Int("folders", folderCount),
		slog.Int("decks", deckCount),
		slog.Int("asset_refs", len(refs)))

	// The cascade is committed; an asset that fails to release stays on disk
	// until a later release of the same reference.
	if err := s.assets.Release(ctx, refs); err != nil {
		log.Warn("failed to release assets of deleted folder",
			slog.String("folder_id", folderID.String()),
			slog.String("error", err.Error()))
	}
	return nil
}

// mapFolderWriteError turns store conflicts into service errors and wraps
// everything that is not an expected business error.
func mapFolderWriteError(operation string, err error) error {
	switch {
	case errors.Is(err, ErrNameConflict):
		return err
	case errors.Is(err, store.ErrFolderNameExists):
		return fmt.Errorf("%w: %v", ErrNameConflict, err)
	case errors.Is(err, ErrParentNotFound), errors.Is(err, ErrInvalidMove), errors.Is(err, store.ErrFolderNotFound),
		errors.Is(err, domain.ErrFolderTooDeep):
		return err
	case errors.Is(err, domain.ErrFolderCycle):
		return NewFolderServiceError(operation, "folder hierarchy is inconsistent", err)
	default:
		return NewFolderServiceError(operation, "unexpected store error", err)
	}
}
