package retention

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/config"
	"github.com/phrazzld/scry-srs/internal/domain"
)

type fakeEventStore struct {
	cutoffs []time.Time
	removed int64
	err     error
}

func (f *fakeEventStore) Create(context.Context, *domain.LearningEvent) error { return nil }

func (f *fakeEventStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.removed, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPruner_RunOnce(t *testing.T) {
	es := &fakeEventStore{removed: 4}
	p := NewPruner(es, config.RetentionConfig{EventTTLDays: 30, RunAt: "03:00"}, discard())
	now := time.Date(2025, 9, 30, 3, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return now }

	removed, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	require.Len(t, es.cutoffs, 1)
	assert.True(t, es.cutoffs[0].Equal(now.AddDate(0, 0, -30)))
}

func TestPruner_RunOnceError(t *testing.T) {
	es := &fakeEventStore{err: errors.New("locked")}
	p := NewPruner(es, config.RetentionConfig{EventTTLDays: 1, RunAt: "03:00"}, discard())

	_, err := p.RunOnce(context.Background())
	assert.EqualError(t, err, "locked")
}

func TestPruner_Disabled(t *testing.T) {
	es := &fakeEventStore{}
	p := NewPruner(es, config.RetentionConfig{EventTTLDays: 0, RunAt: "03:00"}, discard())

	assert.False(t, p.Enabled())
	require.NoError(t, p.Start())
	removed, err := p.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, es.cutoffs)
	p.Stop()
}

func TestPruner_StartSchedulesDailyJob(t *testing.T) {
	p := NewPruner(&fakeEventStore{}, config.RetentionConfig{EventTTLDays: 90, RunAt: "23:59"}, discard())

	require.NoError(t, p.Start())
	defer p.Stop()

	assert.Len(t, p.scheduler.Jobs(), 1)
	assert.True(t, p.scheduler.IsRunning())
}

func TestPruner_StartRejectsBadTime(t *testing.T) {
	p := NewPruner(&fakeEventStore{}, config.RetentionConfig{EventTTLDays: 90, RunAt: "25:99"}, discard())
	assert.Error(t, p.Start())
}
