package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// CardStore reads cards and deck membership from the content tables.
// This service never writes them.
type CardStore interface {
	// GetPublicByID returns the display data of a publicly visible card.
	// Returns ErrCardNotFound if the card does not exist or is not public.
	GetPublicByID(ctx context.Context, id int64) (*domain.Card, error)

	// ListPublicIDs returns the ids of every public card, in ascending order.
	ListPublicIDs(ctx context.Context) ([]int64, error)

	// ListDeckCardIDs returns the distinct public card ids found in the user's
	// own decks (type "user"), in ascending order. A non-empty deckIDs keeps
	// only those decks; decks owned by other users are ignored silently.
	ListDeckCardIDs(ctx context.Context, userID uuid.UUID, deckIDs []int64) ([]int64, error)
}
