package store

import (
	"fmt"

	"github.com/google/uuid"
)

// RowKey identifies the per-user row of a card. Read-modify-write cycles on
// review states and progress are serialized per RowKey.
type RowKey struct {
	UserID uuid.UUID
	CardID int64
}

// String implements fmt.Stringer.
func (k RowKey) String() string {
	return fmt.Sprintf("%s:%d", k.UserID, k.CardID)
}
