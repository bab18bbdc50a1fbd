package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/service/card_review"
)

// MockCardReviewService implements card_review.CardReviewService for testing
type MockCardReviewService struct {
	GetNextCardFn  func(ctx context.Context, userID uuid.UUID, scope srs.ScopeRequest) (*card_review.NextCard, error)
	SubmitReviewFn func(
		ctx context.Context,
		userID uuid.UUID,
		cardID int64,
		rating domain.Rating,
	) (*card_review.ReviewResult, error)

	// Default response values
	NextCard *card_review.NextCard
	Result   *card_review.ReviewResult
	Err      error

	mu               sync.Mutex
	GetNextCardCalls []GetNextCardCall
	SubmitCalls      []SubmitReviewCall
}

// GetNextCardCall records one GetNextCard invocation.
type GetNextCardCall struct {
	UserID uuid.UUID
	Scope  srs.ScopeRequest
}

// SubmitReviewCall records one SubmitReview invocation.
type SubmitReviewCall struct {
	UserID uuid.UUID
	CardID int64
	Rating domain.Rating
}

var _ card_review.CardReviewService = (*MockCardReviewService)(nil)

// GetNextCard implements the card_review.CardReviewService interface
func (m *MockCardReviewService) GetNextCard(
	ctx context.Context,
	userID uuid.UUID,
	scope srs.ScopeRequest,
) (*card_review.NextCard, error) {
	m.mu.Lock()
	m.GetNextCardCalls = append(m.GetNextCardCalls, GetNextCardCall{UserID: userID, Scope: scope})
	m.mu.Unlock()

	if m.GetNextCardFn != nil {
		return m.GetNextCardFn(ctx, userID, scope)
	}
	return m.NextCard, m.Err
}

// SubmitReview implements the card_review.CardReviewService interface
func (m *MockCardReviewService) SubmitReview(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	rating domain.Rating,
) (*card_review.ReviewResult, error) {
	m.mu.Lock()
	m.SubmitCalls = append(m.SubmitCalls, SubmitReviewCall{UserID: userID, CardID: cardID, Rating: rating})
	m.mu.Unlock()

	if m.SubmitReviewFn != nil {
		return m.SubmitReviewFn(ctx, userID, cardID, rating)
	}
	return m.Result, m.Err
}

// CallCounts returns how many times each method was called.
func (m *MockCardReviewService) CallCounts() (getNext, submit int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GetNextCardCalls), len(m.SubmitCalls)
}
