package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/service/card_review"
)

// SRSHandler serves next-card selection and review submission.
type SRSHandler struct {
	reviewService card_review.CardReviewService
	logger        *slog.Logger
}

// NewSRSHandler creates a new SRSHandler.
func NewSRSHandler(reviewService card_review.CardReviewService, logger *slog.Logger) *SRSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SRSHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "srs_handler")),
	}
}

// GetNextCard handles GET /srs/next.
// It responds with {"card": null, "srs": null} when nothing is due.
func (h *SRSHandler) GetNextCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	next, err := h.reviewService.GetNextCard(r.Context(), userID, parseScopeRequest(r))
	if err != nil {
		if errors.Is(err, card_review.ErrNoCardsDue) {
			shared.RespondWithJSON(w, r, http.StatusOK, CardWithSRSResponse{})
			return
		}
		HandleAPIError(w, r, err, "Failed to get next review card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardWithSRSResponse{
		Card: cardToResponse(next.Card),
		SRS:  stateToResponse(next.State),
	})
}

// SubmitReview handles POST /srs/review.
func (h *SRSHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.reviewService.SubmitReview(r.Context(), userID, req.CardID, rating)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review recorded",
		slog.String("user_id", userID.String()),
		slog.Int64("card_id", req.CardID),
		slog.String("rating", string(rating)),
		slog.Int("level", result.State.Level))

	shared.RespondWithJSON(w, r, http.StatusOK, CardWithSRSResponse{
		Card: cardToResponse(result.Card),
		SRS:  stateToResponse(result.State),
	})
}
