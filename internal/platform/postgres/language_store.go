package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// PostgresLanguageStore reads the language catalog seeded by migrations.
type PostgresLanguageStore struct {
	db     store.Querier
	logger *slog.Logger
}

// NewPostgresLanguageStore creates a new PostgreSQL implementation of the LanguageStore interface.
func NewPostgresLanguageStore(db store.Querier, logger *slog.Logger) *PostgresLanguageStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLanguageStore{
		db:     db,
		logger: logger.With(slog.String("component", "language_store")),
	}
}

// Ensure PostgresLanguageStore implements store.LanguageStore interface
var _ store.LanguageStore = (*PostgresLanguageStore)(nil)

// List implements store.LanguageStore.List.
func (s *PostgresLanguageStore) List(ctx context.Context) ([]*domain.Language, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, female_voice_name, male_voice_name FROM languages ORDER BY name`)
	if err != nil {
		log.Error("failed to list languages", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	languages := []*domain.Language{}
	for rows.Next() {
		var l domain.Language
		if err := rows.Scan(&l.Code, &l.Name, &l.FemaleVoiceName, &l.MaleVoiceName); err != nil {
			return nil, err
		}
		languages = append(languages, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return languages, nil
}

// GetByCode implements store.LanguageStore.GetByCode.
func (s *PostgresLanguageStore) GetByCode(ctx context.Context, code string) (*domain.Language, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var l domain.Language
	err := s.db.QueryRowContext(ctx,
		`SELECT code, name, female_voice_name, male_voice_name FROM languages WHERE code = $1`,
		code,
	).Scan(&l.Code, &l.Name, &l.FemaleVoiceName, &l.MaleVoiceName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLanguageNotFound
		}
		log.Error("failed to get language",
			slog.String("error", err.Error()),
			slog.String("code", code))
		return nil, MapError(err)
	}
	return &l, nil
}
