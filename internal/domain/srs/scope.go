package srs

import (
	"fmt"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// Scope names the set of cards a next-card query draws from.
type Scope string

// Supported scopes
const (
	ScopeAllDecks Scope = "all_decks"
	ScopeDeck     Scope = "deck"
	ScopeDecks    Scope = "decks"
	ScopeAllCards Scope = "all_cards"
)

// ScopeRequest is a next-card query before validation.
type ScopeRequest struct {
	Scope   Scope
	DeckID  *int64
	DeckIDs []int64
	OnlyDue bool
}

// ResolvedScope is a validated query. When AllCards is false, DeckIDs limits
// the user's decks; an empty DeckIDs means every deck the user owns.
type ResolvedScope struct {
	Scope    Scope
	AllCards bool
	DeckIDs  []int64
	OnlyDue  bool
}

// Resolve validates the request. An empty scope means all_decks.
func (r ScopeRequest) Resolve() (ResolvedScope, error) {
	scope := r.Scope
	if scope == "" {
		scope = ScopeAllDecks
	}

	out := ResolvedScope{Scope: scope, OnlyDue: r.OnlyDue}

	switch scope {
	case ScopeAllCards:
		out.AllCards = true
	case ScopeAllDecks:
	case ScopeDeck:
		if r.DeckID == nil {
			return ResolvedScope{}, domain.NewValidationError(
				"deck_id", "deck_id is required when scope=deck", nil)
		}
		out.DeckIDs = []int64{*r.DeckID}
	case ScopeDecks:
		if len(r.DeckIDs) == 0 {
			return ResolvedScope{}, domain.NewValidationError(
				"deck_ids", "deck_ids is required when scope=decks", nil)
		}
		out.DeckIDs = dedupe(r.DeckIDs)
	default:
		return ResolvedScope{}, domain.NewValidationError(
			"scope",
			fmt.Sprintf("scope must be one of: %s, %s, %s, %s", ScopeAllDecks, ScopeDeck, ScopeDecks, ScopeAllCards),
			nil,
		)
	}

	return out, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
