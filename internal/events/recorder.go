package events

import (
	"context"
	"fmt"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/store"
)

// StoreRecorder persists every event it receives.
type StoreRecorder struct {
	events store.EventStore
}

// NewStoreRecorder returns a handler appending events to es.
func NewStoreRecorder(es store.EventStore) *StoreRecorder {
	return &StoreRecorder{events: es}
}

// HandleEvent implements EventHandler.
func (r *StoreRecorder) HandleEvent(ctx context.Context, event *domain.LearningEvent) error {
	if err := r.events.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to record %s event: %w", event.Type, err)
	}
	return nil
}
