package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
)

// Emit builds a learning event and hands it to emitter. Failures are logged
// and swallowed: an event is a record of a change that already happened.
func Emit(
	ctx context.Context,
	emitter EventEmitter,
	userID uuid.UUID,
	deviceID string,
	eventType domain.LearningEventType,
	cardID *int64,
	payload any,
	now time.Time,
) {
	if emitter == nil {
		return
	}
	log := logger.FromContext(ctx)

	event, err := domain.NewLearningEvent(userID, deviceID, eventType, cardID, payload, now)
	if err != nil {
		log.Warn("dropping malformed learning event",
			slog.String("type", string(eventType)),
			slog.String("error", err.Error()))
		return
	}

	if err := emitter.EmitEvent(ctx, event); err != nil {
		log.Warn("failed to emit learning event",
			slog.String("type", string(eventType)),
			slog.String("event_id", event.ID.String()),
			slog.String("error", err.Error()))
	}
}
