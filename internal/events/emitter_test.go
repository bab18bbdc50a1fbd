package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/domain"
)

type recordingHandler struct {
	mu     sync.Mutex
	events []*domain.LearningEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, e *domain.LearningEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
	return h.err
}

func newEvent(t *testing.T) *domain.LearningEvent {
	t.Helper()
	cardID := int64(3)
	e, err := domain.NewLearningEvent(uuid.New(), "phone", domain.EventReviewSubmitted, &cardID,
		map[string]string{"rating": "know"}, time.Now())
	require.NoError(t, err)
	return e
}

func TestInMemoryEventEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("emit event with no handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		assert.NoError(t, emitter.EmitEvent(context.Background(), newEvent(t)))
	})

	t.Run("emit event with successful handlers", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		h1, h2 := &recordingHandler{}, &recordingHandler{}
		emitter.RegisterHandler(h1)
		emitter.RegisterHandler(h2)

		event := newEvent(t)
		require.NoError(t, emitter.EmitEvent(context.Background(), event))

		assert.Equal(t, []*domain.LearningEvent{event}, h1.events)
		assert.Equal(t, []*domain.LearningEvent{event}, h2.events)
	})

	t.Run("emit event with failing handler", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		ok := &recordingHandler{}
		emitter.RegisterHandler(failing)
		emitter.RegisterHandler(ok)

		err := emitter.EmitEvent(context.Background(), newEvent(t))
		assert.EqualError(t, err, "handler error")
		assert.Len(t, failing.events, 1)
		assert.Len(t, ok.events, 1, "later handlers still run")
	})
}

func TestEmit(t *testing.T) {
	t.Run("builds and dispatches the event", func(t *testing.T) {
		h := &recordingHandler{}
		emitter := NewInMemoryEventEmitter(nil)
		emitter.RegisterHandler(h)

		user := uuid.New()
		cardID := int64(9)
		now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		Emit(context.Background(), emitter, user, "laptop", domain.EventProgressUpserted, &cardID,
			map[string]int{"percent": 50}, now)

		require.Len(t, h.events, 1)
		got := h.events[0]
		assert.Equal(t, user, got.UserID)
		assert.Equal(t, "laptop", got.DeviceID)
		assert.Equal(t, domain.EventProgressUpserted, got.Type)
		assert.Equal(t, &cardID, got.CardID)
		assert.JSONEq(t, `{"percent":50}`, string(got.Payload))
		assert.True(t, got.CreatedAt.Equal(now))
	})

	t.Run("swallows handler errors", func(t *testing.T) {
		emitter := NewInMemoryEventEmitter(nil)
		emitter.RegisterHandler(HandlerFunc(func(context.Context, *domain.LearningEvent) error {
			return errors.New("db down")
		}))
		assert.NotPanics(t, func() {
			Emit(context.Background(), emitter, uuid.New(), "", domain.EventProgressImported, nil, nil, time.Now())
		})
	})

	t.Run("drops invalid events", func(t *testing.T) {
		h := &recordingHandler{}
		emitter := NewInMemoryEventEmitter(nil)
		emitter.RegisterHandler(h)

		Emit(context.Background(), emitter, uuid.Nil, "", domain.EventProgressImported, nil, nil, time.Now())
		assert.Empty(t, h.events)
	})

	t.Run("nil emitter", func(t *testing.T) {
		assert.NotPanics(t, func() {
			Emit(context.Background(), nil, uuid.New(), "", domain.EventProgressImported, nil, nil, time.Now())
		})
	})
}
