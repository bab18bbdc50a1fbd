package testdb

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// CardFixture describes a card to insert. Empty fields get defaults.
type CardFixture struct {
	Slug          string
	Title         string
	AnswerExpress string
	Takeaway      string
	KeyPoints     []string
	CoverImageURL *string
	Private       bool
}

// InsertCard stores a card and returns its id.
func InsertCard(t *testing.T, db *sqlx.DB, c CardFixture) int64 {
	t.Helper()

	if c.Slug == "" {
		c.Slug = "card-" + uuid.NewString()[:8]
	}
	if c.Title == "" {
		c.Title = "Title of " + c.Slug
	}
	if c.KeyPoints == nil {
		c.KeyPoints = []string{}
	}
	keyPoints, err := json.Marshal(c.KeyPoints)
	require.NoError(t, err)

	var id int64
	err = db.Get(&id, db.Rebind(`
		INSERT INTO cards (slug, title, answer_express, takeaway, key_points, cover_image_url, is_public)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		c.Slug, c.Title, c.AnswerExpress, c.Takeaway, string(keyPoints), c.CoverImageURL, !c.Private)
	require.NoError(t, err, "Failed to insert card %s", c.Slug)
	return id
}

// InsertCards stores n public cards and returns their ids in ascending order.
func InsertCards(t *testing.T, db *sqlx.DB, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for range n {
		ids = append(ids, InsertCard(t, db, CardFixture{}))
	}
	return ids
}

// InsertDeck creates a deck owned by userID holding cardIDs and returns its id.
func InsertDeck(t *testing.T, db *sqlx.DB, userID uuid.UUID, deckType domain.DeckType, cardIDs ...int64) int64 {
	t.Helper()

	if deckType == "" {
		deckType = domain.DeckTypeUser
	}

	var deckID int64
	err := db.Get(&deckID, db.Rebind(`
		INSERT INTO decks (user_id, type, name) VALUES (?, ?, ?) RETURNING id`),
		userID, string(deckType), "deck")
	require.NoError(t, err, "Failed to insert deck")

	for i, cardID := range cardIDs {
		_, err := db.Exec(db.Rebind(`
			INSERT INTO deck_cards (deck_id, card_id, position) VALUES (?, ?, ?)`),
			deckID, cardID, i)
		require.NoError(t, err, "Failed to add card %d to deck", cardID)
	}
	return deckID
}
