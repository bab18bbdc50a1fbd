package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TimeMergePolicy selects how time_ms is combined when a record already exists.
type TimeMergePolicy int

const (
	// TimeMergeMax keeps the larger value: clients report a running total.
	TimeMergeMax TimeMergePolicy = iota
	// TimeMergeSum adds the values: clients flush discrete sessions.
	TimeMergeSum
)

// String implements fmt.Stringer.
func (p TimeMergePolicy) String() string {
	switch p {
	case TimeMergeMax:
		return "max"
	case TimeMergeSum:
		return "sum"
	default:
		return fmt.Sprintf("TimeMergePolicy(%d)", int(p))
	}
}

// Score bounds for percent, score_best and score_last.
const (
	MinScore = 0
	MaxScore = 100
)

// LessonProgress is the server copy of a user's progress on one lesson card.
// UpdatedAt is the client clock of the newest snapshot ever merged.
type LessonProgress struct {
	UserID     uuid.UUID  `json:"-"            db:"user_id"`
	CardID     int64      `json:"lesson_id"    db:"card_id"`
	Seen       bool       `json:"seen"         db:"seen"`
	Completed  bool       `json:"completed"    db:"completed"`
	Percent    int        `json:"percent"      db:"percent"`
	TimeMs     int64      `json:"time_ms"      db:"time_ms"`
	ScoreBest  *int       `json:"score_best"   db:"score_best"`
	ScoreLast  *int       `json:"score_last"   db:"score_last"`
	UpdatedAt  time.Time  `json:"updated_at"   db:"updated_at"`
	LastSeenAt *time.Time `json:"last_seen_at" db:"last_seen_at"`
}

// ProgressDelta is a partial progress snapshot sent by a client. Only
// UpdatedAt is mandatory.
type ProgressDelta struct {
	Seen       Optional[bool]      `json:"seen"`
	Completed  Optional[bool]      `json:"completed"`
	Percent    Optional[int]       `json:"percent"`
	TimeMs     Optional[int64]     `json:"time_ms"`
	ScoreBest  Optional[int]       `json:"score_best"`
	ScoreLast  Optional[int]       `json:"score_last"`
	UpdatedAt  Optional[time.Time] `json:"updated_at"`
	LastSeenAt Optional[time.Time] `json:"last_seen_at"`
}

// Validate checks ranges and nullability. Field names in the returned errors
// are prefixed with prefix, which may be empty.
func (d ProgressDelta) Validate(prefix string) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, NewValidationError(prefix+field, msg, nil))
	}

	if !d.UpdatedAt.HasValue() {
		add("updated_at", "updated_at is required")
	}
	if d.Seen.Set && d.Seen.Null {
		add("seen", "seen may not be null")
	}
	if d.Completed.Set && d.Completed.Null {
		add("completed", "completed may not be null")
	}
	if d.Percent.Set {
		if d.Percent.Null {
			add("percent", "percent may not be null")
		} else if !inScoreRange(d.Percent.Value) {
			add("percent", "percent must be between 0 and 100")
		}
	}
	if d.TimeMs.Set {
		if d.TimeMs.Null {
			add("time_ms", "time_ms may not be null")
		} else if d.TimeMs.Value < 0 {
			add("time_ms", "time_ms must be greater than or equal to 0")
		}
	}
	if d.ScoreBest.HasValue() && !inScoreRange(d.ScoreBest.Value) {
		add("score_best", "score_best must be between 0 and 100")
	}
	if d.ScoreLast.HasValue() && !inScoreRange(d.ScoreLast.Value) {
		add("score_last", "score_last must be between 0 and 100")
	}

	return errs.OrNil()
}

func inScoreRange(v int) bool {
	return v >= MinScore && v <= MaxScore
}

// MergeProgress reconciles an incoming snapshot with the stored record and
// returns the record to persist. existing is never modified; it may be nil.
//
// Fields covered by last-write-wins (seen, completed, percent, score_last,
// last_seen_at) are taken from the delta only when its UpdatedAt is strictly
// newer. time_ms and score_best are merged regardless of ordering, so a
// stale snapshot can still raise them. The delta must have passed Validate.
func MergeProgress(existing *LessonProgress, in ProgressDelta, policy TimeMergePolicy) *LessonProgress {
	incomingAt := in.UpdatedAt.Value.UTC()

	if existing == nil {
		merged := &LessonProgress{UpdatedAt: incomingAt}
		if in.Seen.HasValue() {
			merged.Seen = in.Seen.Value
		}
		if in.Completed.HasValue() {
			merged.Completed = in.Completed.Value
		}
		if in.Percent.HasValue() {
			merged.Percent = in.Percent.Value
		}
		if in.TimeMs.HasValue() {
			merged.TimeMs = in.TimeMs.Value
		}
		merged.ScoreBest = in.ScoreBest.Ptr()
		merged.ScoreLast = in.ScoreLast.Ptr()
		merged.LastSeenAt = utcPtr(in.LastSeenAt.Ptr())
		return merged
	}

	merged := *existing

	if incomingAt.After(existing.UpdatedAt) {
		if in.Seen.HasValue() {
			merged.Seen = in.Seen.Value
		}
		if in.Completed.HasValue() {
			merged.Completed = in.Completed.Value
		}
		if in.Percent.HasValue() {
			merged.Percent = in.Percent.Value
		}
		// An explicit null clears the nullable fields.
		if in.ScoreLast.Set {
			merged.ScoreLast = in.ScoreLast.Ptr()
		}
		if in.LastSeenAt.Set {
			merged.LastSeenAt = utcPtr(in.LastSeenAt.Ptr())
		}
	}

	if in.TimeMs.HasValue() {
		switch policy {
		case TimeMergeSum:
			merged.TimeMs = existing.TimeMs + in.TimeMs.Value
		default:
			merged.TimeMs = max(existing.TimeMs, in.TimeMs.Value)
		}
	}

	if in.ScoreBest.HasValue() {
		if existing.ScoreBest == nil || in.ScoreBest.Value > *existing.ScoreBest {
			merged.ScoreBest = in.ScoreBest.Ptr()
		}
	}

	if incomingAt.After(existing.UpdatedAt) {
		merged.UpdatedAt = incomingAt
	}

	return &merged
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
