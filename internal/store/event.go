package store

import (
	"context"
	"time"

	"github.com/phrazzld/scry-srs/internal/domain"
)

// EventStore persists learning events.
type EventStore interface {
	// Create appends an event.
	Create(ctx context.Context, event *domain.LearningEvent) error

	// DeleteOlderThan removes events created before cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
