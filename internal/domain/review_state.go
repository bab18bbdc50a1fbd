package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Rating is the learner's self-assessment after a review.
type Rating string

// Possible rating values
const (
	RatingKnow   Rating = "know"
	RatingMedium Rating = "medium"
	RatingAgain  Rating = "again"
)

// Valid reports whether r is one of the known ratings.
func (r Rating) Valid() bool {
	switch r {
	case RatingKnow, RatingMedium, RatingAgain:
		return true
	default:
		return false
	}
}

// ParseRating converts raw client input to a Rating.
func ParseRating(s string) (Rating, error) {
	r := Rating(s)
	if !r.Valid() {
		return "", NewValidationError("rating", "rating must be one of: know, medium, again", ErrInvalidRating)
	}
	return r, nil
}

// Common validation errors for CardReviewState
var (
	ErrEmptyStateUserID = errors.New("review state user ID cannot be empty")
	ErrEmptyStateCardID = errors.New("review state card ID cannot be empty")
	ErrInvalidLevel     = errors.New("level must be between 1 and 5")
)

// CardReviewState is a user's Leitner state for one card. A card with no
// stored state has never been reviewed by that user.
type CardReviewState struct {
	UserID         uuid.UUID  `json:"user_id"          db:"user_id"`
	CardID         int64      `json:"card_id"          db:"card_id"`
	Level          int        `json:"level"            db:"level"`
	DueAt          time.Time  `json:"due_at"           db:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at" db:"last_reviewed_at"`
	ReviewsCount   int        `json:"reviews_count"    db:"reviews_count"`
	LastRating     Rating     `json:"last_rating"      db:"last_rating"`
	CreatedAt      time.Time  `json:"created_at"       db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"       db:"updated_at"`
}

// NewCardReviewState returns the state a card starts from before its first
// review: level 1, due immediately, never rated.
func NewCardReviewState(userID uuid.UUID, cardID int64, now time.Time) *CardReviewState {
	now = now.UTC()
	return &CardReviewState{
		UserID:    userID,
		CardID:    cardID,
		Level:     1,
		DueAt:     now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsDue reports whether the card should be reviewed at now.
func (s *CardReviewState) IsDue(now time.Time) bool {
	return !s.DueAt.After(now)
}

// Validate checks that the state can be persisted.
func (s *CardReviewState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}
	if s.CardID <= 0 {
		return ErrEmptyStateCardID
	}
	if s.Level < 1 || s.Level > 5 {
		return ErrInvalidLevel
	}
	if s.LastRating != "" && !s.LastRating.Valid() {
		return ErrInvalidRating
	}
	return nil
}
