package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/api"
	"github.com/phrazzld/scry-srs/internal/api/middleware"
	"github.com/phrazzld/scry-srs/internal/api/shared"
	"github.com/phrazzld/scry-srs/internal/mocks"
)

var testUserID = uuid.MustParse("8d3c1d7e-5a0b-4f6e-9d43-2f1a7c9e0b11")

// newTestRouter mounts the learning routes behind an auth middleware that
// accepts any bearer token as testUserID.
func newTestRouter(
	t *testing.T,
	reviews *mocks.MockCardReviewService,
	progress *mocks.MockProgressService,
) http.Handler {
	t.Helper()

	if reviews == nil {
		reviews = &mocks.MockCardReviewService{}
	}
	if progress == nil {
		progress = &mocks.MockProgressService{}
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srsHandler := api.NewSRSHandler(reviews, log)
	progressHandler := api.NewProgressHandler(progress, log)
	auth := middleware.NewAuthMiddleware(mocks.AcceptingJWTService(testUserID))

	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Get("/srs/next", srsHandler.GetNextCard)
		r.Post("/srs/review", srsHandler.SubmitReview)
		r.Get("/progress", progressHandler.ListProgress)
		r.Patch("/progress/{card_id}", progressHandler.UpsertProgress)
		r.Post("/progress/import", progressHandler.ImportProgress)
	})
	return r
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()

	var resp shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func newUnauthenticatedRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
