package main

import (
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	apiMiddleware "github.com/phrazzld/scry-srs/internal/api/middleware"
	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/domain/srs"
	"github.com/phrazzld/scry-srs/internal/events"
	"github.com/phrazzld/scry-srs/internal/platform/keylock"
	"github.com/phrazzld/scry-srs/internal/platform/sqlstore"
	"github.com/phrazzld/scry-srs/internal/redact"
	"github.com/phrazzld/scry-srs/internal/retention"
	"github.com/phrazzld/scry-srs/internal/service/auth"
	"github.com/phrazzld/scry-srs/internal/service/card_review"
	"github.com/phrazzld/scry-srs/internal/service/progress"
	"github.com/phrazzld/scry-srs/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sqlx.DB

	cardStore        store.CardStore
	reviewStateStore store.ReviewStateStore
	progressStore    store.ProgressStore
	eventStore       store.EventStore

	jwtService        auth.JWTService
	srsService        srs.Service
	cardReviewService card_review.CardReviewService
	progressService   progress.ProgressService

	eventEmitter *events.InMemoryEventEmitter
	rateLimiter  *apiMiddleware.RateLimiter
	pruner       *retention.Pruner
}

// newApplication wires stores, services and background jobs around an open
// database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sqlx.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.cardStore = sqlstore.NewSQLCardStore(db, logger)
	app.reviewStateStore = sqlstore.NewSQLReviewStateStore(db, logger)
	app.progressStore = sqlstore.NewSQLProgressStore(db, logger)
	app.eventStore = sqlstore.NewSQLEventStore(db, logger)

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(events.NewStoreRecorder(app.eventStore))

	// Reviews and progress share one lock table keyed by user and card.
	locks := keylock.New[store.RowKey]()

	app.srsService = srs.NewDefaultService()
	app.cardReviewService = card_review.NewCardReviewService(
		db,
		app.cardStore,
		app.reviewStateStore,
		app.srsService,
		logger,
		card_review.WithEmitter(app.eventEmitter),
		card_review.WithLocker(locks),
	)
	app.progressService = progress.NewProgressService(
		db,
		app.cardStore,
		app.progressStore,
		logger,
		progress.WithEmitter(app.eventEmitter),
		progress.WithLocker(locks),
	)

	app.rateLimiter = apiMiddleware.NewRateLimiter(cfg.RateLimit)
	app.pruner = retention.NewPruner(app.eventStore, cfg.Retention, logger)

	logger.Info("application initialized",
		slog.Bool("rate_limit_enabled", app.rateLimiter.Enabled()),
		slog.Bool("event_retention_enabled", app.pruner.Enabled()))
	return app, nil
}

// cleanup stops background jobs and closes the database.
func (app *application) cleanup() {
	if app.pruner != nil {
		app.pruner.Stop()
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database", slog.String("error", redact.Error(err)))
		}
	}
}
