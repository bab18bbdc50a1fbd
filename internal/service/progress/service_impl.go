package progress

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/phrazzld/scry-srs/internal/domain"
	"github.com/phrazzld/scry-srs/internal/events"
	"github.com/phrazzld/scry-srs/internal/platform/keylock"
	"github.com/phrazzld/scry-srs/internal/platform/logger"
	"github.com/phrazzld/scry-srs/internal/store"
)

var _ ProgressService = (*progressServiceImpl)(nil)

type progressServiceImpl struct {
	db       *sqlx.DB
	cards    store.CardStore
	progress store.ProgressStore
	locks    *keylock.Locker[store.RowKey]
	emitter  events.EventEmitter
	now      func() time.Time
	logger   *slog.Logger
}

// Option customizes the service.
type Option func(*progressServiceImpl)

// WithClock replaces time.Now as the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *progressServiceImpl) { s.now = now }
}

// WithEmitter sends a learning event after every upsert and import.
func WithEmitter(e events.EventEmitter) Option {
	return func(s *progressServiceImpl) { s.emitter = e }
}

// WithLocker shares a key lock with other services.
func WithLocker(l *keylock.Locker[store.RowKey]) Option {
	return func(s *progressServiceImpl) { s.locks = l }
}

// NewProgressService creates a new ProgressService implementation.
func NewProgressService(
	db *sqlx.DB,
	cards store.CardStore,
	progress store.ProgressStore,
	logger *slog.Logger,
	opts ...Option,
) ProgressService {
	if db == nil {
		panic("db cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &progressServiceImpl{
		db:       db,
		cards:    cards,
		progress: progress,
		emitter:  events.NopEmitter{},
		now:      time.Now,
		logger:   logger.With(slog.String("component", "progress_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = keylock.New[store.RowKey]()
	}
	return s
}

// List implements ProgressService.List.
func (s *progressServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]domain.LessonProgress, error) {
	records, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, newServiceError("list_progress", "failed to list progress", err)
	}
	return records, nil
}

// Upsert implements ProgressService.Upsert.
func (s *progressServiceImpl) Upsert(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	delta domain.ProgressDelta,
) (*domain.LessonProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("user_id", userID.String()),
		slog.Int64("card_id", cardID))

	if err := delta.Validate(""); err != nil {
		log.Debug("rejected progress delta", slog.String("error", err.Error()))
		return nil, err
	}

	if _, err := s.cards.GetPublicByID(ctx, cardID); err != nil {
		if errors.Is(err, store.ErrCardNotFound) {
			log.Warn("lesson not found for progress")
			return nil, ErrCardNotFound
		}
		return nil, newServiceError("upsert_progress", "failed to get card", err)
	}

	merged, _, err := s.mergeOne(ctx, userID, cardID, delta, domain.TimeMergeMax)
	if err != nil {
		log.Error("failed to upsert progress", slog.String("error", err.Error()))
		return nil, newServiceError("upsert_progress", "failed to store progress", err)
	}

	events.Emit(ctx, s.emitter, userID, "", domain.EventProgressUpserted, &cardID, merged, s.now())
	return merged, nil
}

// Import implements ProgressService.Import.
func (s *progressServiceImpl) Import(ctx context.Context, userID uuid.UUID, req ImportRequest) (*ImportResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("user_id", userID.String()))

	if err := validateImport(req); err != nil {
		log.Debug("rejected progress import", slog.String("error", err.Error()))
		return nil, err
	}

	result := &ImportResult{}
	for _, entry := range orderedEntries(req.Lessons) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entryLog := log.With(slog.Int64("card_id", entry.cardID))

		if _, err := s.cards.GetPublicByID(ctx, entry.cardID); err != nil {
			if !errors.Is(err, store.ErrCardNotFound) {
				entryLog.Warn("skipping import entry, card lookup failed", slog.String("error", err.Error()))
			}
			continue
		}

		_, advanced, err := s.mergeOne(ctx, userID, entry.cardID, entry.delta, domain.TimeMergeSum)
		if err != nil {
			entryLog.Error("skipping import entry, store failed", slog.String("error", err.Error()))
			continue
		}

		result.Imported++
		if advanced {
			result.Updated++
		}
	}

	log.Info("progress imported",
		slog.Int("entries", len(req.Lessons)),
		slog.Int("imported", result.Imported),
		slog.Int("updated", result.Updated))

	events.Emit(ctx, s.emitter, userID, req.DeviceID, domain.EventProgressImported, nil, result, s.now())
	return result, nil
}

// mergeOne runs the locked read-merge-write for one key. The boolean reports
// whether the stored updated_at advanced or the record is new.
func (s *progressServiceImpl) mergeOne(
	ctx context.Context,
	userID uuid.UUID,
	cardID int64,
	delta domain.ProgressDelta,
	policy domain.TimeMergePolicy,
) (*domain.LessonProgress, bool, error) {
	unlock := s.locks.Lock(store.RowKey{UserID: userID, CardID: cardID})
	defer unlock()

	var (
		merged   *domain.LessonProgress
		advanced bool
	)
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sqlx.Tx) error {
		records := s.progress.WithTx(tx)

		existing, err := records.GetForUpdate(ctx, userID, cardID)
		if err != nil && !errors.Is(err, store.ErrProgressNotFound) {
			return err
		}

		merged = domain.MergeProgress(existing, delta, policy)
		merged.UserID = userID
		merged.CardID = cardID

		if existing != nil {
			advanced = merged.UpdatedAt.After(existing.UpdatedAt)
			return records.Update(ctx, merged)
		}

		err = records.Insert(ctx, merged)
		if !errors.Is(err, store.ErrProgressExists) {
			advanced = err == nil
			return err
		}

		// Another process created the row after our read; merge into it.
		existing, err = records.GetForUpdate(ctx, userID, cardID)
		if err != nil {
			return err
		}
		merged = domain.MergeProgress(existing, delta, policy)
		merged.UserID = userID
		merged.CardID = cardID
		advanced = merged.UpdatedAt.After(existing.UpdatedAt)
		return records.Update(ctx, merged)
	})
	if err != nil {
		return nil, false, err
	}
	return merged, advanced, nil
}

type importEntry struct {
	cardID int64
	delta  domain.ProgressDelta
}

// orderedEntries drops keys that are not integers and sorts the rest by card id.
func orderedEntries(lessons map[string]domain.ProgressDelta) []importEntry {
	entries := make([]importEntry, 0, len(lessons))
	for key, delta := range lessons {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, importEntry{cardID: id, delta: delta})
	}
	slices.SortFunc(entries, func(a, b importEntry) int {
		switch {
		case a.cardID < b.cardID:
			return -1
		case a.cardID > b.cardID:
			return 1
		default:
			return 0
		}
	})
	return entries
}

func validateImport(req ImportRequest) error {
	var errs domain.ValidationErrors

	if len(req.DeviceID) > domain.MaxDeviceIDLength {
		errs = append(errs, domain.NewValidationError("device_id",
			"device_id must be at most 64 characters", nil))
	}
	if req.Lessons == nil {
		errs = append(errs, domain.NewValidationError("lessons", "lessons is required", nil))
	}

	keys := make([]string, 0, len(req.Lessons))
	for key := range req.Lessons {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	for _, key := range keys {
		err := req.Lessons[key].Validate("lessons." + key + ".")
		var fieldErrs domain.ValidationErrors
		if errors.As(err, &fieldErrs) {
			errs = append(errs, fieldErrs...)
		}
	}

	return errs.OrNil()
}
