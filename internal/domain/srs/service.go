package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// Common errors
var (
	ErrNilState      = errors.New("card review state cannot be nil")
	ErrInvalidRating = fmt.Errorf("%w: must be one of know, medium, again", domain.ErrInvalidRating)
)

// Service defines the interface for Leitner scheduling operations
type Service interface {
	// Advance computes the level and due date that follow rating a card at level.
	// Out-of-range levels are clamped first.
	Advance(level int, rating domain.Rating, now time.Time) (Transition, error)

	// ApplyReview returns a new state with the review applied: level and due
	// date advanced, reviews_count incremented, last review fields set.
	// The input state is left untouched.
	ApplyReview(
		state *domain.CardReviewState,
		rating domain.Rating,
		now time.Time,
	) (*domain.CardReviewState, error)

	// SelectNext picks the card to review next. See SelectNext.
	SelectNext(in SelectionInput) (Selection, bool)
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	if params == nil {
		params = NewDefaultParams()
	}
	return &defaultService{
		params: params,
	}
}

// Advance implements Service.
func (s *defaultService) Advance(level int, rating domain.Rating, now time.Time) (Transition, error) {
	if !rating.Valid() {
		return Transition{}, ErrInvalidRating
	}
	return calculateTransition(level, rating, now, s.params), nil
}

// ApplyReview implements Service.
func (s *defaultService) ApplyReview(
	state *domain.CardReviewState,
	rating domain.Rating,
	now time.Time,
) (*domain.CardReviewState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	if !rating.Valid() {
		return nil, ErrInvalidRating
	}

	return calculateNextState(state, rating, now, s.params), nil
}

// SelectNext implements Service.
func (s *defaultService) SelectNext(in SelectionInput) (Selection, bool) {
	return SelectNext(in)
}
