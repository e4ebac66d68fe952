package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/store"
)

type folderStore struct {
	h handle
}

// Ensure folderStore implements store.FolderStore interface
var _ store.FolderStore = (*folderStore)(nil)

func (s *folderStore) Create(ctx context.Context, folder *domain.Folder) error {
	return s.h.run(func(st *state) error {
		if folder.ParentID != nil {
			parent, ok := st.folders[*folder.ParentID]
			if !ok || parent.OwnerID != folder.OwnerID {
				return store.ErrFolderNotFound
			}
		}
		if folderNameTaken(st, folder.OwnerID, folder.ParentID, folder.Name, &folder.ID) {
			return store.ErrFolderNameExists
		}
		st.folders[folder.ID] = copyFolder(folder)
		return nil
	})
}

func (s *folderStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Folder, error) {
	var out *domain.Folder
	err := s.h.run(func(st *state) error {
		folder, ok := st.folders[id]
		if !ok || folder.OwnerID != ownerID {
			return store.ErrFolderNotFound
		}
		out = copyFolder(folder)
		return nil
	})
	return out, err
}

func (s *folderStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Folder, error) {
	return s.list(ownerID, func(f *domain.Folder) bool { return true })
}

func (s *folderStore) ListChildren(ctx context.Context, ownerID uuid.UUID, parentID *uuid.UUID) ([]*domain.Folder, error) {
	return s.list(ownerID, func(f *domain.Folder) bool {
		return domain.SameParent(f.ParentID, parentID)
	})
}

func (s *folderStore) ExistsByName(
	ctx context.Context,
	ownerID uuid.UUID,
	parentID *uuid.UUID,
	name string,
	excludeID *uuid.UUID,
) (bool, error) {
	var exists bool
	err := s.h.run(func(st *state) error {
		exists = folderNameTaken(st, ownerID, parentID, name, excludeID)
		return nil
	})
	return exists, err
}

func (s *folderStore) Update(ctx context.Context, folder *domain.Folder) error {
	return s.h.run(func(st *state) error {
		existing, ok := st.folders[folder.ID]
		if !ok || existing.OwnerID != folder.OwnerID {
			return store.ErrFolderNotFound
		}
		if folderNameTaken(st, folder.OwnerID, folder.ParentID, folder.Name, &folder.ID) {
			return store.ErrFolderNameExists
		}
		st.folders[folder.ID] = copyFolder(folder)
		return nil
	})
}

func (s *folderStore) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	deleted := 0
	err := s.h.run(func(st *state) error {
		for id := range idSet(ids) {
			folder, ok := st.folders[id]
			if !ok || folder.OwnerID != ownerID {
				continue
			}
			delete(st.folders, id)
			deleted++
		}
		return nil
	})
	return deleted, err
}

func (s *folderStore) list(ownerID uuid.UUID, keep func(f *domain.Folder) bool) ([]*domain.Folder, error) {
	folders := []*domain.Folder{}
	err := s.h.run(func(st *state) error {
		for _, folder := range st.folders {
			if folder.OwnerID == ownerID && keep(folder) {
				folders = append(folders, copyFolder(folder))
			}
		}
		return nil
	})
	sort.Slice(folders, func(i, j int) bool { return folders[i].Name < folders[j].Name })
	return folders, err
}

func folderNameTaken(st *state, ownerID uuid.UUID, parentID *uuid.UUID, name string, excludeID *uuid.UUID) bool {
	for _, f := range st.folders {
		if f.OwnerID != ownerID || excluded(f.ID, excludeID) {
			continue
		}
		if domain.SameParent(f.ParentID, parentID) && strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}
