package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/service/progress"
)

// MockProgressService implements progress.ProgressService for testing
type MockProgressService struct {
	ListFn   func(ctx context.Context, userID uuid.UUID) ([]domain.LessonProgress, error)
	UpsertFn func(
		ctx context.Context,
		userID uuid.UUID,
		cardID int64,
		delta domain.ProgressDelta,
	) (*domain.LessonProgress, error)
	ImportFn func(ctx context.Context, userID uuid.UUID, req progress.ImportRequest) (*progress.ImportResult, error)

	// Default response values
	Records      []domain.LessonProgress
	Record       *domain.LessonProgress
	ImportResult *progress.ImportResult
	Err          error

	mu          sync.Mutex
	UpsertCalls []UpsertCall
	ImportCalls []progress.ImportRequest
}

// UpsertCall records one Upsert invocation.
type UpsertCall struct {
	UserID uuid.UUID
	CardID int64
	Delta  domain.ProgressDelta
}

var _ progress.ProgressService = (*MockProgressService)(nil)

// List implements the progress.ProgressService interface
func (m *MockProgressService) List(ctx context.Context, userID uuid.UUID) ([]domain.LessonProgress, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID)
	}
	return m.Records, m.Err
}

// Upsert implements the progress.ProgressService interface
func (m *MockProgressService) Upsert(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	delta domain.ProgressDelta,
) (*domain.LessonProgress, error) {
	m.mu.Lock()
	m.UpsertCalls = append(m.UpsertCalls, UpsertCall{UserID: userID, CardID: cardID, Delta: delta})
	m.mu.Unlock()

	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, userID, cardID, delta)
	}
	return m.Record, m.Err
}

// Import implements the progress.ProgressService interface
func (m *MockProgressService) Import(
	ctx context.Context,
	userID uuid.UUID,
	req progress.ImportRequest,
) (*progress.ImportResult, error) {
	m.mu.Lock()
	m.ImportCalls = append(m.ImportCalls, req)
	m.mu.Unlock()

	if m.ImportFn != nil {
		return m.ImportFn(ctx, userID, req)
	}
	return m.ImportResult, m.Err
}
