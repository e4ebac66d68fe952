package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/wordeck-api/internal/api/shared"
	"github.com/phrazzld/wordeck-api/internal/platform/logger"
	"github.com/phrazzld/wordeck-api/internal/service"
)

// FolderHandler handles the dashboard and folder requests.
type FolderHandler struct {
	folderService service.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new FolderHandler.
func NewFolderHandler(folderService service.FolderService, logger *slog.Logger) *FolderHandler {
	if folderService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("folderService cannot be nil for FolderHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FolderHandler")
	}
	return &FolderHandler{
		folderService: folderService,
		logger:        logger.With(slog.String("component", "folder_handler")),
	}
}

// Dashboard handles GET /dashboard: the top-level folders and decks.
func (h *FolderHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	view, err := h.folderService.Dashboard(r.Context(), ownerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dashboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// CreateFolder handles POST /folders.
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, ok := requireOwner(w, r, log)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	folder, err := h.folderService.CreateFolder(r.Context(), ownerID, req.Name, req.ParentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create folder")
		return
	}

	log.Debug("folder created",
		slog.String("owner_id", ownerID.String()),
		slog.String("folder_id", folder.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, folder)
}

// GetFolder handles GET /folders/{id}: the folder with its breadcrumbs,
// child folders and decks.
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, folderID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	view, err := h.folderService.GetFolder(r.Context(), ownerID, folderID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load folder")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// RenameFolder handles PATCH /folders/{id}.
func (h *FolderHandler) RenameFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, folderID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req RenameRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	folder, err := h.folderService.RenameFolder(r.Context(), ownerID, folderID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename folder")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, folder)
}

// MoveFolder handles POST /folders/{id}/move.
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, folderID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req MoveFolderRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	folder, err := h.folderService.MoveFolder(r.Context(), ownerID, folderID, req.ParentID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to move folder")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, folder)
}

// DeleteFolder handles DELETE /folders/{id}. The whole subtree goes with it.
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	ownerID, folderID, ok := handleOwnerIDAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), ownerID, folderID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete folder")
		return
	}

	log.Debug("folder deleted",
		slog.String("owner_id", ownerID.String()),
		slog.String("folder_id", folderID.String()))
	w.WriteHeader(http.StatusNoContent)
}
