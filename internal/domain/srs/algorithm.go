package srs

import (
	"time"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// Transition is the outcome of rating a card at a given level.
type Transition struct {
	Level int
	DueAt time.Time
}

// clampLevel forces level into the configured range. Stored levels are
// always in range, but levels coming from elsewhere may not be.
func clampLevel(level int, params *Params) int {
	if level < params.MinLevel {
		return params.MinLevel
	}
	if level > params.MaxLevel {
		return params.MaxLevel
	}
	return level
}

// calculateNextLevel moves a card between boxes:
//   - know promotes one box, up to MaxLevel
//   - again demotes one box, down to MinLevel
//   - medium keeps the card where it is
func calculateNextLevel(level int, rating domain.Rating, params *Params) int {
	current := clampLevel(level, params)

	switch rating {
	case domain.RatingKnow:
		return min(params.MaxLevel, current+1)
	case domain.RatingAgain:
		return max(params.MinLevel, current-1)
	default:
		return current
	}
}

// intervalDays returns the review interval for level, falling back when the
// table has no entry.
func intervalDays(level int, params *Params) int {
	if days, ok := params.IntervalDays[level]; ok && days > 0 {
		return days
	}
	return params.FallbackIntervalDays
}

// calculateNextReviewDate adds whole days to now. AddDate keeps the wall
// clock time across DST changes, so all times are handled in UTC.
func calculateNextReviewDate(level int, now time.Time, params *Params) time.Time {
	return now.UTC().AddDate(0, 0, intervalDays(level, params))
}

// calculateTransition is the pure Leitner step shared by the Service methods.
func calculateTransition(level int, rating domain.Rating, now time.Time, params *Params) Transition {
	next := calculateNextLevel(level, rating, params)
	return Transition{
		Level: next,
		DueAt: calculateNextReviewDate(next, now, params),
	}
}

// calculateNextState applies a review to a copy of state.
func calculateNextState(
	state *domain.CardReviewState,
	rating domain.Rating,
	now time.Time,
	params *Params,
) *domain.CardReviewState {
	now = now.UTC()
	tr := calculateTransition(state.Level, rating, now, params)

	next := *state
	next.Level = tr.Level
	next.DueAt = tr.DueAt
	next.ReviewsCount = state.ReviewsCount + 1
	next.LastReviewedAt = &now
	next.LastRating = rating
	next.UpdatedAt = now
	return &next
}
