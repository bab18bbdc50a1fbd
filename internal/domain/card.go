package domain

// Card is the scheduler's view of a lesson card. Cards and decks are owned by
// the content store; this service only reads them.
type Card struct {
	ID               int64    `json:"id"                 db:"id"`
	Slug             string   `json:"slug"               db:"slug"`
	Title            string   `json:"title"              db:"title"`
	AnswerExpress    string   `json:"answer_express"     db:"answer_express"`
	Takeaway         string   `json:"takeaway"           db:"takeaway"`
	KeyPoints        []string `json:"key_points"         db:"-"`
	CoverImageURL    *string  `json:"cover_image_url"    db:"cover_image_url"`
	CoverImageCredit *string  `json:"cover_image_credit" db:"cover_image_credit"`
}

// DeckType distinguishes decks a user built from curated ones.
type DeckType string

// Deck types known to the content store.
const (
	DeckTypeUser     DeckType = "user"
	DeckTypeOfficial DeckType = "official"
)
