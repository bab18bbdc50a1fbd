package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/scry-srs/internal/domain"
)

func TestCalculateNextLevel(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	for level := 1; level <= 5; level++ {
		if got, want := calculateNextLevel(level, domain.RatingKnow, params), min(5, level+1); got != want {
			t.Errorf("know at level %d: got %d, want %d", level, got, want)
		}
		if got, want := calculateNextLevel(level, domain.RatingAgain, params), max(1, level-1); got != want {
			t.Errorf("again at level %d: got %d, want %d", level, got, want)
		}
		if got := calculateNextLevel(level, domain.RatingMedium, params); got != level {
			t.Errorf("medium at level %d: got %d, want %d", level, got, level)
		}
	}
}

func TestCalculateNextLevel_ClampsInput(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	testCases := []struct {
		name     string
		level    int
		rating   domain.Rating
		expected int
	}{
		{"zero level medium", 0, domain.RatingMedium, 1},
		{"negative level know", -3, domain.RatingKnow, 2},
		{"level above max medium", 9, domain.RatingMedium, 5},
		{"level above max again", 9, domain.RatingAgain, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := calculateNextLevel(tc.level, tc.rating, params); got != tc.expected {
				t.Errorf("got %d, want %d", got, tc.expected)
			}
		})
	}
}

func TestIntervalDays(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()

	expected := map[int]int{1: 1, 2: 3, 3: 7, 4: 14, 5: 30, 6: 1, 0: 1}
	for level, days := range expected {
		if got := intervalDays(level, params); got != days {
			t.Errorf("level %d: got %d days, want %d", level, got, days)
		}
	}
}

func TestCalculateTransition_DueAtAlwaysInFuture(t *testing.T) {
	t.Parallel()
	params := NewDefaultParams()
	now := time.Date(2025, 3, 30, 1, 30, 0, 0, time.UTC)

	for level := 0; level <= 6; level++ {
		for _, rating := range []domain.Rating{domain.RatingKnow, domain.RatingMedium, domain.RatingAgain} {
			tr := calculateTransition(level, rating, now, params)
			if !tr.DueAt.After(now) {
				t.Errorf("level %d rating %s: due_at %v not after %v", level, rating, tr.DueAt, now)
			}
			if tr.DueAt.Sub(now) < 24*time.Hour {
				t.Errorf("level %d rating %s: interval shorter than a day", level, rating)
			}
		}
	}
}

func TestCalculateTransition_KnowFromLevelOne(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tr := calculateTransition(1, domain.RatingKnow, now, NewDefaultParams())

	if tr.Level != 2 {
		t.Errorf("expected level 2, got %d", tr.Level)
	}
	if want := now.AddDate(0, 0, 3); !tr.DueAt.Equal(want) {
		t.Errorf("expected due_at %v, got %v", want, tr.DueAt)
	}
}

func TestCalculateTransition_AgainAtLevelOne(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tr := calculateTransition(1, domain.RatingAgain, now, NewDefaultParams())

	if tr.Level != 1 {
		t.Errorf("expected level 1, got %d", tr.Level)
	}
	if want := now.AddDate(0, 0, 1); !tr.DueAt.Equal(want) {
		t.Errorf("expected due_at %v, got %v", want, tr.DueAt)
	}
}
