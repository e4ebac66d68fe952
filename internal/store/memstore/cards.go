package memstore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/store"
)

type cardStore struct {
	h handle
}

// Ensure cardStore implements store.CardStore interface
var _ store.CardStore = (*cardStore)(nil)

func (s *cardStore) Create(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}
	return s.h.run(func(st *state) error {
		deck, ok := st.decks[card.DeckID]
		if !ok || deck.OwnerID != card.OwnerID {
			return fmt.Errorf("%w: deck with ID %s not found", store.ErrInvalidEntity, card.DeckID)
		}
		if _, exists := st.cards[card.ID]; exists {
			return fmt.Errorf("%w: card %s", store.ErrDuplicate, card.ID)
		}
		st.cards[card.ID] = copyCard(card)
		return nil
	})
}

func (s *cardStore) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error) {
	var out *domain.Card
	err := s.h.run(func(st *state) error {
		card, err := ownedCard(st, ownerID, id)
		if err != nil {
			return err
		}
		out = copyCard(card)
		return nil
	})
	return out, err
}

// GetForUpdate is GetByID: memstore transactions already hold the store mutex.
func (s *cardStore) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*domain.Card, error) {
	return s.GetByID(ctx, ownerID, id)
}

func (s *cardStore) UpdateText(ctx context.Context, card *domain.Card) error {
	return s.h.run(func(st *state) error {
		existing, err := ownedCard(st, card.OwnerID, card.ID)
		if err != nil {
			return err
		}
		existing.TextInKnownLanguage = card.TextInKnownLanguage
		existing.TextInLearningLanguage = card.TextInLearningLanguage
		existing.DescriptionInKnownLanguage = card.DescriptionInKnownLanguage
		existing.DescriptionInLearningLanguage = card.DescriptionInLearningLanguage
		existing.CEFRLevel = card.CEFRLevel
		existing.UpdatedAt = card.UpdatedAt
		return nil
	})
}

func (s *cardStore) UpdateSoundURLs(ctx context.Context, ownerID, id uuid.UUID, refs []string) error {
	return s.h.run(func(st *state) error {
		existing, err := ownedCard(st, ownerID, id)
		if err != nil {
			return err
		}
		existing.SoundURLs = append([]string{}, refs...)
		existing.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *cardStore) UpdateMastery(
	ctx context.Context,
	ownerID, id uuid.UUID,
	score float64,
	lastReviewedAt time.Time,
) error {
	if score < domain.MinMasteryScore || score > domain.MaxMasteryScore {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, domain.ErrMasteryOutOfRange)
	}
	return s.h.run(func(st *state) error {
		existing, err := ownedCard(st, ownerID, id)
		if err != nil {
			return err
		}
		existing.MasteryScore = score
		existing.LastReviewedAt = lastReviewedAt
		existing.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (s *cardStore) MarkLearned(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) (int, error) {
	changed := 0
	err := s.h.run(func(st *state) error {
		now := time.Now().UTC()
		for id := range idSet(ids) {
			card, ok := st.cards[id]
			if !ok || card.OwnerID != ownerID || !card.IsNew {
				continue
			}
			card.IsNew = false
			card.UpdatedAt = now
			changed++
		}
		return nil
	})
	return changed, err
}

func (s *cardStore) Delete(ctx context.Context, ownerID, id uuid.UUID) ([]string, error) {
	var refs []string
	err := s.h.run(func(st *state) error {
		card, err := ownedCard(st, ownerID, id)
		if err != nil {
			return err
		}
		refs = append([]string{}, card.SoundURLs...)
		delete(st.cards, id)
		return nil
	})
	return refs, err
}

func (s *cardStore) DeleteByDecks(ctx context.Context, ownerID uuid.UUID, deckIDs []uuid.UUID) ([]string, error) {
	refs := []string{}
	err := s.h.run(func(st *state) error {
		decks := idSet(deckIDs)
		for id, card := range st.cards {
			if card.OwnerID != ownerID {
				continue
			}
			if _, ok := decks[card.DeckID]; !ok {
				continue
			}
			refs = append(refs, card.SoundURLs...)
			delete(st.cards, id)
		}
		return nil
	})
	return refs, err
}

func (s *cardStore) ListByDeck(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	return s.filter(ownerID, deckID, 0, func(c *domain.Card) bool { return true })
}

func (s *cardStore) FindNew(ctx context.Context, ownerID, deckID uuid.UUID, limit int) ([]*domain.Card, error) {
	return s.filter(ownerID, deckID, limit, func(c *domain.Card) bool { return c.IsNew })
}

func (s *cardStore) FindDueForReview(
	ctx context.Context,
	ownerID, deckID uuid.UUID,
	dueBefore time.Time,
) ([]*domain.Card, error) {
	return s.filter(ownerID, deckID, 0, func(c *domain.Card) bool {
		return !c.IsNew && c.MasteryScore < domain.MaxMasteryScore && c.LastReviewedAt.Before(dueBefore)
	})
}

func (s *cardStore) FindReviewed(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	return s.filter(ownerID, deckID, 0, func(c *domain.Card) bool { return !c.IsNew })
}

func (s *cardStore) FindMastered(ctx context.Context, ownerID, deckID uuid.UUID) ([]*domain.Card, error) {
	return s.filter(ownerID, deckID, 0, func(c *domain.Card) bool { return c.IsMastered() })
}

func (s *cardStore) CountSoundReferences(ctx context.Context, ref string) (int, error) {
	count := 0
	err := s.h.run(func(st *state) error {
		for _, card := range st.cards {
			for _, r := range card.SoundURLs {
				if r == ref {
					count++
					break
				}
			}
		}
		return nil
	})
	return count, err
}

func (s *cardStore) DeckStats(
	ctx context.Context,
	ownerID uuid.UUID,
	deckIDs []uuid.UUID,
	dueBefore time.Time,
) (map[uuid.UUID]domain.DeckStats, error) {
	stats := make(map[uuid.UUID]domain.DeckStats, len(deckIDs))
	for _, id := range deckIDs {
		stats[id] = domain.DeckStats{DeckID: id}
	}

	err := s.h.run(func(st *state) error {
		sums := make(map[uuid.UUID]float64, len(deckIDs))
		for _, card := range st.cards {
			ds, ok := stats[card.DeckID]
			if !ok || card.OwnerID != ownerID {
				continue
			}
			ds.TotalCards++
			switch {
			case card.IsNew:
				ds.NewCards++
			case card.MasteryScore >= domain.MaxMasteryScore:
				ds.MasteredCards++
			default:
				ds.InProgressCards++
				if card.LastReviewedAt.Before(dueBefore) {
					ds.NeedsReviewCards++
				}
			}
			sums[card.DeckID] += card.MasteryScore
			stats[card.DeckID] = ds
		}
		for id, ds := range stats {
			if ds.TotalCards > 0 {
				ds.AverageMastery = sums[id] / float64(ds.TotalCards)
				stats[id] = ds
			}
		}
		return nil
	})
	return stats, err
}

func (s *cardStore) CountByFolder(ctx context.Context, ownerID uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int)
	err := s.h.run(func(st *state) error {
		for _, card := range st.cards {
			if card.OwnerID != ownerID {
				continue
			}
			deck, ok := st.decks[card.DeckID]
			if !ok || deck.FolderID == nil {
				continue
			}
			counts[*deck.FolderID]++
		}
		return nil
	})
	return counts, err
}

func (s *cardStore) filter(
	ownerID, deckID uuid.UUID,
	limit int,
	keep func(c *domain.Card) bool,
) ([]*domain.Card, error) {
	cards := []*domain.Card{}
	err := s.h.run(func(st *state) error {
		for _, card := range st.cards {
			if card.OwnerID == ownerID && card.DeckID == deckID && keep(card) {
				cards = append(cards, copyCard(card))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(cards, func(i, j int) bool {
		if cards[i].CreatedAt.Equal(cards[j].CreatedAt) {
			return cards[i].ID.String() < cards[j].ID.String()
		}
		return cards[i].CreatedAt.Before(cards[j].CreatedAt)
	})
	if limit > 0 && len(cards) > limit {
		cards = cards[:limit]
	}
	return cards, nil
}

func ownedCard(st *state, ownerID, id uuid.UUID) (*domain.Card, error) {
	card, ok := st.cards[id]
	if !ok || card.OwnerID != ownerID {
		return nil, store.ErrCardNotFound
	}
	return card, nil
}
