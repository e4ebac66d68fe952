package memstore

import (
	"context"
	"sort"

	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/store"
)

type languageStore struct {
	h handle
}

// Ensure languageStore implements store.LanguageStore interface
var _ store.LanguageStore = (*languageStore)(nil)

func (s *languageStore) List(ctx context.Context) ([]*domain.Language, error) {
	languages := []*domain.Language{}
	err := s.h.run(func(st *state) error {
		for _, lang := range st.languages {
			l := *lang
			languages = append(languages, &l)
		}
		return nil
	})
	sort.Slice(languages, func(i, j int) bool { return languages[i].Name < languages[j].Name })
	return languages, err
}

func (s *languageStore) GetByCode(ctx context.Context, code string) (*domain.Language, error) {
	var out *domain.Language
	err := s.h.run(func(st *state) error {
		lang, ok := st.languages[code]
		if !ok {
			return store.ErrLanguageNotFound
		}
		l := *lang
		out = &l
		return nil
	})
	return out, err
}
