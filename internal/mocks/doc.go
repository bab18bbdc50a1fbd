// Package mocks provides hand-written mocks of the service interfaces for
// handler and middleware tests.
//
// Each mock has a function field per method. When the field is nil the mock
// returns its default values instead, and every call is recorded:
//
//	svc := &mocks.MockProgressService{
//	    UpsertFn: func(ctx context.Context, userID uuid.UUID, cardID int64, d domain.ProgressDelta) (*domain.LessonProgress, error) {
//	        return &domain.LessonProgress{CardID: cardID}, nil
//	    },
//	}
package mocks
