package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/wordeck-api/internal/api"
	apiMiddleware "github.com/phrazzld/wordeck-api/internal/api/middleware"
)

// setupRouter creates the router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	folderHandler := api.NewFolderHandler(app.folderService, app.logger)
	deckHandler := api.NewDeckHandler(app.deckService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	sessionHandler := api.NewSessionHandler(app.scheduler, app.logger)
	languageHandler := api.NewLanguageHandler(app.languageService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/dashboard", folderHandler.Dashboard)
		r.Get("/languages", languageHandler.ListLanguages)

		r.Route("/folders", func(r chi.Router) {
			r.Post("/", folderHandler.CreateFolder)
			r.Get("/{id}", folderHandler.GetFolder)
			r.Patch("/{id}", folderHandler.RenameFolder)
			r.Post("/{id}/move", folderHandler.MoveFolder)
			r.Delete("/{id}", folderHandler.DeleteFolder)
		})

		r.Route("/decks", func(r chi.Router) {
			r.Post("/", deckHandler.CreateDeck)
			r.Get("/{id}", deckHandler.GetDeck)
			r.Patch("/{id}", deckHandler.RenameDeck)
			r.Post("/{id}/move", deckHandler.MoveDeck)
			r.Delete("/{id}", deckHandler.DeleteDeck)

			r.Get("/{id}/learning-session", sessionHandler.StartLearningSession)
			r.Get("/{id}/review-session", sessionHandler.StartReviewSession)
			r.Get("/{id}/review-session/all", sessionHandler.StartReviewAllCardsSession)
		})

		r.Post("/learning-session/finish", sessionHandler.FinishLearningSession)

		r.Route("/cards", func(r chi.Router) {
			r.Post("/", cardHandler.CreateCard)
			r.Get("/{id}", cardHandler.GetCard)
			r.Put("/{id}", cardHandler.UpdateCard)
			r.Delete("/{id}", cardHandler.DeleteCard)
			r.Post("/{id}/review", sessionHandler.FinishReviewCard)
		})
	})

	// Audio written by the filesystem backend is served directly. The minio
	// backend serves it from the bucket instead.
	if app.config.Storage.Backend == "filesystem" {
		prefix := "/" + strings.Trim(app.config.Storage.PublicPrefix, "/") + "/"
		files := http.StripPrefix(prefix, http.FileServer(http.Dir(app.config.Storage.LocalDir)))
		r.Get(prefix+"*", func(w http.ResponseWriter, r *http.Request) {
			// No directory listings.
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
			files.ServeHTTP(w, r)
		})
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
