package srs

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// SelectionInput is everything SelectNext needs. It carries the clock so the
// choice is a pure function of its input.
type SelectionInput struct {
	UserID uuid.UUID

	// CandidateIDs is the resolved scope; duplicates are ignored.
	CandidateIDs []int64

	// States holds the stored review states of the user. States for cards
	// outside CandidateIDs are ignored.
	States []domain.CardReviewState

	Now     time.Time
	OnlyDue bool
}

// SelectionReason tells which rule produced a Selection.
type SelectionReason string

// Selection reasons, in priority order
const (
	ReasonDue      SelectionReason = "due"
	ReasonUnseen   SelectionReason = "unseen"
	ReasonUpcoming SelectionReason = "upcoming"
)

// Selection is the card chosen for review and the state to show with it.
// For an unseen card the state is synthesized and not stored anywhere.
type Selection struct {
	CardID int64
	State  domain.CardReviewState
	Reason SelectionReason
}

// SelectNext applies the review priority rules:
//
//  1. a stored state that is due, earliest due_at first
//  2. a candidate the user has never reviewed, lowest card id first
//  3. nothing, when only due cards were requested
//  4. otherwise the stored state with the earliest due_at, even if in the future
//
// Ties on due_at are broken by the lowest card id. The boolean is false when
// no card qualifies.
func SelectNext(in SelectionInput) (Selection, bool) {
	candidates := make(map[int64]struct{}, len(in.CandidateIDs))
	for _, id := range in.CandidateIDs {
		candidates[id] = struct{}{}
	}
	if len(candidates) == 0 {
		return Selection{}, false
	}

	var (
		earliestDue *domain.CardReviewState
		earliestAny *domain.CardReviewState
	)
	reviewed := make(map[int64]struct{}, len(in.States))

	for i := range in.States {
		st := &in.States[i]
		if _, ok := candidates[st.CardID]; !ok {
			continue
		}
		reviewed[st.CardID] = struct{}{}

		if earliestAny == nil || reviewsBefore(st, earliestAny) {
			earliestAny = st
		}
		if st.IsDue(in.Now) && (earliestDue == nil || reviewsBefore(st, earliestDue)) {
			earliestDue = st
		}
	}

	if earliestDue != nil {
		return Selection{CardID: earliestDue.CardID, State: *earliestDue, Reason: ReasonDue}, true
	}

	var unseen int64
	found := false
	for id := range candidates {
		if _, ok := reviewed[id]; ok {
			continue
		}
		if !found || id < unseen {
			unseen = id
			found = true
		}
	}
	if found {
		state := domain.NewCardReviewState(in.UserID, unseen, in.Now)
		return Selection{CardID: unseen, State: *state, Reason: ReasonUnseen}, true
	}

	if in.OnlyDue || earliestAny == nil {
		return Selection{}, false
	}

	return Selection{CardID: earliestAny.CardID, State: *earliestAny, Reason: ReasonUpcoming}, true
}

func reviewsBefore(a, b *domain.CardReviewState) bool {
	if !a.DueAt.Equal(b.DueAt) {
		return a.DueAt.Before(b.DueAt)
	}
	return a.CardID < b.CardID
}
