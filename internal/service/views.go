package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// AssetManager binds generated audio to cards and releases it again.
// *asset.Store implements it.
type AssetManager interface {
	Bind(ctx context.Context, reqs []asset.Request, persist func(ctx context.Context, refs []string) error) ([]string, error)
	Release(ctx context.Context, refs []string) error
}

// Ensure *asset.Store implements AssetManager
var _ AssetManager = (*asset.Store)(nil)

// FolderSummary is a folder together with the number of cards in its whole subtree.
type FolderSummary struct {
	Folder    *domain.Folder `json:"folder"`
	CardCount int            `json:"number_of_cards"`
}

// DeckSummary is a deck together with its progress counters.
type DeckSummary struct {
	Deck  *domain.Deck     `json:"deck"`
	Stats domain.DeckStats `json:"stats"`
}

// FolderView is the content of one folder as shown when it is opened.
type FolderView struct {
	Folder      *domain.Folder      `json:"folder"`
	Breadcrumbs []domain.Breadcrumb `json:"breadcrumbs"`
	Folders     []FolderSummary     `json:"folders"`
	Decks       []DeckSummary       `json:"decks"`
}

// DashboardView is the root level of the hierarchy.
type DashboardView struct {
	Folders []FolderSummary `json:"folders"`
	Decks   []DeckSummary   `json:"decks"`
}

// DeckView is a deck with its counters and cards.
type DeckView struct {
	Deck  *domain.Deck     `json:"deck"`
	Stats domain.DeckStats `json:"stats"`
	Cards []*domain.Card   `json:"cards"`
}

// summarizeDecks attaches the progress counters to each deck.
func summarizeDecks(
	ctx context.Context,
	cards store.CardStore,
	ownerID uuid.UUID,
	decks []*domain.Deck,
	dueBefore time.Time,
) ([]DeckSummary, error) {
	summaries := make([]DeckSummary, 0, len(decks))
	if len(decks) == 0 {
		return summaries, nil
	}

	ids := make([]uuid.UUID, len(decks))
	for i, d := range decks {
		ids[i] = d.ID
	}
	stats, err := cards.DeckStats(ctx, ownerID, ids, dueBefore)
	if err != nil {
		return nil, err
	}

	for _, d := range decks {
		s := stats[d.ID]
		s.DeckID = d.ID
		summaries = append(summaries, DeckSummary{Deck: d, Stats: s})
	}
	return summaries, nil
}

// summarizeFolders attaches the recursive card count to each folder.
func summarizeFolders(
	tree *domain.FolderTree,
	folders []*domain.Folder,
	perFolder map[uuid.UUID]int,
) ([]FolderSummary, error) {
	summaries := make([]FolderSummary, 0, len(folders))
	for _, f := range folders {
		count, err := tree.RecursiveCount(f.ID, perFolder)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, FolderSummary{Folder: f, CardCount: count})
	}
	return summaries, nil
}
