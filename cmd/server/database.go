package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/wordeck-api/internal/config"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/platform/postgres"
	"github.com/phrazzld/wordeck-api/internal/store"
	"github.com/phrazzld/wordeck-api/internal/store/memstore"
)

// defaultLanguages seeds the in-memory catalog. It mirrors the rows inserted
// by the languages migration.
var defaultLanguages = []*domain.Language{
	{Code: "en-US", Name: "English", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "de-DE", Name: "German", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "es-ES", Name: "Spanish", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "fr-FR", Name: "French", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "it-IT", Name: "Italian", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "pt-BR", Name: "Portuguese", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "nl-NL", Name: "Dutch", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "pl-PL", Name: "Polish", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "ru-RU", Name: "Russian", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "uk-UA", Name: "Ukrainian", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "tr-TR", Name: "Turkish", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "ja-JP", Name: "Japanese", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
	{Code: "ko-KR", Name: "Korean", FemaleVoiceName: "Kore", MaleVoiceName: "Puck"},
}

// setupAppDatabase opens the postgres pool and checks it with a ping.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns))
	return db, nil
}

// setupTransactor returns the store for the configured driver. The returned
// *sql.DB is nil for the memory driver.
func setupTransactor(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (store.Transactor, *sql.DB, error) {
	switch cfg.Driver {
	case "memory":
		db := memstore.New(logger)
		db.SeedLanguages(defaultLanguages...)
		logger.Warn("using in-memory store; data is lost on restart")
		return db, nil, nil
	case "postgres":
		db, err := setupAppDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewTransactor(db, logger), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}
