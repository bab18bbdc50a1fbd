package api

import (
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// Card text is authored in the CMS and may contain markup. Titles and
// credits are plain text; body fields keep basic formatting.
var (
	plainTextPolicy = bluemonday.StrictPolicy()
	richTextPolicy  = bluemonday.UGCPolicy()
)

// ReviewRequest is the body of POST /srs/review.
type ReviewRequest struct {
	CardID int64  `json:"card_id" validate:"required,gt=0"`
	Rating string `json:"rating"  validate:"required"`
}

// ImportRequest is the body of POST /progress/import.
type ImportRequest struct {
	DeviceID string                          `json:"device_id" validate:"max=64"`
	Lessons  map[string]domain.ProgressDelta `json:"lessons"   validate:"required"`
}

// CardResponse is the display payload of a card.
type CardResponse struct {
	ID               int64    `json:"id"`
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	AnswerExpress    string   `json:"answer_express"`
	Takeaway         string   `json:"takeaway"`
	KeyPoints        []string `json:"key_points"`
	CoverImageURL    *string  `json:"cover_image_url"`
	CoverImageCredit *string  `json:"cover_image_credit"`
}

// SRSResponse is a learner's scheduling state for a card.
type SRSResponse struct {
	Level          int        `json:"level"`
	DueAt          time.Time  `json:"due_at"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	ReviewsCount   int        `json:"reviews_count"`
	LastRating     string     `json:"last_rating"`
}

// CardWithSRSResponse is returned by both SRS endpoints. Both members are
// null when no card is due.
type CardWithSRSResponse struct {
	Card *CardResponse `json:"card"`
	SRS  *SRSResponse  `json:"srs"`
}

func cardToResponse(card *domain.Card) *CardResponse {
	if card == nil {
		return nil
	}

	keyPoints := make([]string, 0, len(card.KeyPoints))
	for _, kp := range card.KeyPoints {
		keyPoints = append(keyPoints, richTextPolicy.Sanitize(kp))
	}

	var credit *string
	if card.CoverImageCredit != nil {
		c := plainTextPolicy.Sanitize(*card.CoverImageCredit)
		credit = &c
	}

	return &CardResponse{
		ID:               card.ID,
		Slug:             card.Slug,
		Title:            plainTextPolicy.Sanitize(card.Title),
		AnswerExpress:    richTextPolicy.Sanitize(card.AnswerExpress),
		Takeaway:         richTextPolicy.Sanitize(card.Takeaway),
		KeyPoints:        keyPoints,
		CoverImageURL:    card.CoverImageURL,
		CoverImageCredit: credit,
	}
}

func stateToResponse(state *domain.CardReviewState) *SRSResponse {
	if state == nil {
		return nil
	}

	var lastReviewed *time.Time
	if state.LastReviewedAt != nil {
		t := state.LastReviewedAt.UTC()
		lastReviewed = &t
	}

	return &SRSResponse{
		Level:          state.Level,
		DueAt:          state.DueAt.UTC(),
		LastReviewedAt: lastReviewed,
		ReviewsCount:   state.ReviewsCount,
		LastRating:     string(state.LastRating),
	}
}
