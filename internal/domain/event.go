package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LearningEventType names what happened in a LearningEvent.
type LearningEventType string

// Event types recorded by the service.
const (
	EventReviewSubmitted  LearningEventType = "srs.review"
	EventProgressUpserted LearningEventType = "progress.upsert"
	EventProgressImported LearningEventType = "progress.import"
)

// MaxDeviceIDLength bounds the client supplied device identifier.
const MaxDeviceIDLength = 64

// LearningEvent is an append-only record of a learner action.
type LearningEvent struct {
	ID        uuid.UUID         `json:"id"         db:"id"`
	UserID    uuid.UUID         `json:"user_id"    db:"user_id"`
	DeviceID  string            `json:"device_id"  db:"device_id"`
	Type      LearningEventType `json:"type"       db:"type"`
	CardID    *int64            `json:"card_id"    db:"card_id"`
	Payload   json.RawMessage   `json:"payload"    db:"payload"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// NewLearningEvent builds an event with a fresh id. payload is marshalled to JSON;
// a nil payload is stored as an empty object.
func NewLearningEvent(
	userID uuid.UUID,
	deviceID string,
	eventType LearningEventType,
	cardID *int64,
	payload any,
	now time.Time,
) (*LearningEvent, error) {
	if userID == uuid.Nil {
		return nil, NewValidationError("user_id", "user ID cannot be empty", ErrInvalidID)
	}
	if len(deviceID) > MaxDeviceIDLength {
		return nil, NewValidationError("device_id", "device_id must be at most 64 characters", nil)
	}

	raw := json.RawMessage(`{}`)
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &LearningEvent{
		ID:        uuid.New(),
		UserID:    userID,
		DeviceID:  deviceID,
		Type:      eventType,
		CardID:    cardID,
		Payload:   raw,
		CreatedAt: now.UTC(),
	}, nil
}
