package memstore

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/store"
)

type deckStore struct {
	h handle
}

// Ensure deckStore implements store.DeckStore interface
var _ store.DeckStore = (*deckStore)(nil)

func (s *deckStore) Create(ctx context.Context, deck *domain.Deck) error {
	return s.h.run(func(st *state) error {
		if deckNameTaken(st, deck.OwnerID, deck.FolderID, deck.Name, &deck.ID) {
			return store.ErrDeckNameExists
		}
		st.decks[deck.ID] = copyDeck(deck)
		return nil
	})
}

func (s *deckStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Deck, error) {
	var out *domain.Deck
	err := s.h.run(func(st *state) error {
		deck, ok := st.decks[id]
		if !ok || deck.OwnerID != ownerID {
			return store.ErrDeckNotFound
		}
		out = copyDeck(deck)
		return nil
	})
	return out, err
}

func (s *deckStore) ListByFolder(ctx context.Context, ownerID uuid.UUID, folderID *uuid.UUID) ([]*domain.Deck, error) {
	return s.list(ownerID, func(d *domain.Deck) bool {
		return domain.SameParent(d.FolderID, folderID)
	})
}

func (s *deckStore) ListByFolders(ctx context.Context, ownerID uuid.UUID, folderIDs []uuid.UUID) ([]*domain.Deck, error) {
	folders := idSet(folderIDs)
	return s.list(ownerID, func(d *domain.Deck) bool {
		if d.FolderID == nil {
			return false
		}
		_, ok := folders[*d.FolderID]
		return ok
	})
}

func (s *deckStore) ExistsByName(
	ctx context.Context,
	ownerID uuid.UUID,
	folderID *uuid.UUID,
	name string,
	excludeID *uuid.UUID,
) (bool, error) {
	var exists bool
	err := s.h.run(func(st *state) error {
		exists = deckNameTaken(st, ownerID, folderID, name, excludeID)
		return nil
	})
	return exists, err
}

func (s *deckStore) Update(ctx context.Context, deck *domain.Deck) error {
	return s.h.run(func(st *state) error {
		existing, ok := st.decks[deck.ID]
		if !ok || existing.OwnerID != deck.OwnerID {
			return store.ErrDeckNotFound
		}
		if deckNameTaken(st, deck.OwnerID, deck.FolderID, deck.Name, &deck.ID) {
			return store.ErrDeckNameExists
		}
		st.decks[deck.ID] = copyDeck(deck)
		return nil
	})
}

func (s *deckStore) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.h.run(func(st *state) error {
		deck, ok := st.decks[id]
		if !ok || deck.OwnerID != ownerID {
			return store.ErrDeckNotFound
		}
		delete(st.decks, id)
		return nil
	})
}

func (s *deckStore) DeleteMany(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	deleted := 0
	err := s.h.run(func(st *state) error {
		for id := range idSet(ids) {
			deck, ok := st.decks[id]
			if !ok || deck.OwnerID != ownerID {
				continue
			}
			delete(st.decks, id)
			deleted++
		}
		return nil
	})
	return deleted, err
}

func (s *deckStore) list(ownerID uuid.UUID, keep func(d *domain.Deck) bool) ([]*domain.Deck, error) {
	decks := []*domain.Deck{}
	err := s.h.run(func(st *state) error {
		for _, deck := range st.decks {
			if deck.OwnerID == ownerID && keep(deck) {
				decks = append(decks, copyDeck(deck))
			}
		}
		return nil
	})
	sort.Slice(decks, func(i, j int) bool { return decks[i].Name < decks[j].Name })
	return decks, err
}

func deckNameTaken(st *state, ownerID uuid.UUID, folderID *uuid.UUID, name string, excludeID *uuid.UUID) bool {
	for _, d := range st.decks {
		if d.OwnerID != ownerID || excluded(d.ID, excludeID) {
			continue
		}
		if domain.SameParent(d.FolderID, folderID) && strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}
