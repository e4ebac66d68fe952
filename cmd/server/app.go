package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/wordeck-api/internal/asset"
	"github.com/phrazzld/wordeck-api/internal/config"
	"github.com/phrazzld/wordeck-api/internal/domain"
	"github.com/phrazzld/wordeck-api/internal/domain/mastery"
	"github.com/phrazzld/wordeck-api/internal/redact"
	"github.com/phrazzld/wordeck-api/internal/service"
	"github.com/phrazzld/wordeck-api/internal/service/auth"
	"github.com/phrazzld/wordeck-api/internal/service/session"
	"github.com/phrazzld/wordeck-api/internal/store"
)

// application holds the shared dependencies of the server so they can be
// wired once and cleaned up together on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	// db is nil when the memory driver is used.
	db *sql.DB
	tx store.Transactor

	assets *asset.Store

	jwtService      auth.JWTService
	folderService   service.FolderService
	deckService     service.DeckService
	cardService     service.CardService
	languageService service.LanguageService
	scheduler       session.Scheduler
}

// newApplication wires every dependency from cfg.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.tx, app.db, err = setupTransactor(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	// Everything below may fail; release the pool if it does.
	ok := false
	defer func() {
		if !ok {
			app.cleanup()
		}
	}()

	blobs, err := setupBlobs(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize asset storage: %w", err)
	}
	synth, err := setupSynthesizer(ctx, cfg.TTS, logger)
	if err != nil {
		return nil, err
	}
	app.assets, err = asset.NewStore(blobs, synth, app.tx.Stores().Cards, assetConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset store: %w", err)
	}

	engine := mastery.NewEngineWithParams(mastery.NewParams(mastery.ParamsConfig{
		ReviewInterval:  time.Duration(cfg.Learning.ReviewIntervalSeconds) * time.Second,
		DampeningFactor: cfg.Learning.DampeningFactor,
	}))
	limits := domain.Limits{
		MaxFolderNameLength:  cfg.Learning.MaxFolderNameLength,
		MaxDeckNameLength:    cfg.Learning.MaxDeckNameLength,
		MaxWordLength:        cfg.Learning.MaxCardWordLength,
		MaxDescriptionLength: cfg.Learning.MaxCardDescriptionLength,
	}

	app.folderService, err = service.NewFolderService(
		app.tx, app.assets, engine, limits, cfg.Learning.MaxFolderDepth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder service: %w", err)
	}
	app.deckService, err = service.NewDeckService(app.tx, app.assets, engine, limits, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}
	app.cardService, err = service.NewCardService(app.tx, app.assets, limits, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}
	app.languageService, err = service.NewLanguageService(app.tx.Stores().Languages, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create language service: %w", err)
	}
	app.scheduler = session.NewScheduler(app.tx, domain.NewStrategyRegistry(), engine, session.Config{
		DefaultLearningSessionSize: cfg.Learning.DefaultLearningSessionSize,
		MaxLearningSessionSize:     cfg.Learning.MaxLearningSessionSize,
	}, logger)

	ok = true
	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases the database pool, if any.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", redact.Error(err)))
		}
		app.db = nil
	}
	app.logger.Info("application shutdown completed")
}

// runServe is the serve command: load config, wire, and run.
func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := loadAppConfig()
	if err != nil {
		return err
	}

	app, err := newApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", slog.String("error", redact.Error(err)))
		return err
	}
	return app.Run(ctx)
}
