package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
)

// requireUserID extracts the authenticated user's UUID from the request
// context. When it is missing, a 401 is written and false returned.
func requireUserID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		if log == nil {
			log = logger.FromContext(r.Context())
		}
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// getPathInt64 extracts a positive integer ID from the URL path parameters.
//
// Returns:
//   - (id, nil): the parsed ID
//   - (0, error): a ValidationError naming paramName when missing or malformed
func getPathInt64(r *http.Request, paramName string) (int64, error) {
	raw := chi.URLParam(r, paramName)
	if raw == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "must be a positive integer", domain.ErrInvalidID)
	}
	return id, nil
}

// parseScopeRequest reads the next-card query string. Malformed numbers are
// treated as absent, so a scope missing its decks is reported by Resolve.
func parseScopeRequest(r *http.Request) srs.ScopeRequest {
	q := r.URL.Query()
	return srs.ScopeRequest{
		Scope:   srs.Scope(strings.TrimSpace(q.Get("scope"))),
		DeckID:  parseOptionalInt64(q.Get("deck_id")),
		DeckIDs: parseInt64List(q.Get("deck_ids")),
		OnlyDue: parseBool(q["only_due"], true),
	}
}

func parseOptionalInt64(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// parseInt64List splits a comma list, skipping empty and unparseable parts.
func parseInt64List(raw string) []int64 {
	var out []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// parseBool reads the first value of a query parameter. Absent or
// unrecognized values yield def.
func parseBool(values []string, def bool) bool {
	if len(values) == 0 {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(values[0])) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
