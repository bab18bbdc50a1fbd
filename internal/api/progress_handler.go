package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/service/progress"
)

// ProgressHandler serves lesson progress sync.
type ProgressHandler struct {
	progressService progress.ProgressService
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService progress.ProgressService, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "progress_handler")),
	}
}

// ListProgress handles GET /progress. The body is a JSON array ordered by lesson ID.
func (h *ProgressHandler) ListProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	records, err := h.progressService.List(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list progress")
		return
	}
	if records == nil {
		records = []domain.LessonProgress{}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, records)
}

// UpsertProgress handles PATCH /progress/{card_id}.
// The body is a partial snapshot; the merged record is returned.
func (h *ProgressHandler) UpsertProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	cardID, err := getPathInt64(r, "card_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var delta domain.ProgressDelta
	if err := shared.DecodeJSON(w, r, &delta); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	record, err := h.progressService.Upsert(r.Context(), userID, cardID, delta)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, record)
}

// ImportProgress handles POST /progress/import.
func (h *ProgressHandler) ImportProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r, logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req ImportRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.progressService.Import(r.Context(), userID, progress.ImportRequest{
		DeviceID: req.DeviceID,
		Lessons:  req.Lessons,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
