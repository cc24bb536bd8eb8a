package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) WarmCatalog(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return 6, s.err
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recorder struct {
	mu       sync.Mutex
	listings []int
	last     time.Time
}

func (r *recorder) MarkWarmed(_ context.Context, listings int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings = append(r.listings, listings)
	r.last = at
	return nil
}

func (r *recorder) LastWarmed(context.Context) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWarmerWarmsOnStartAndTick(t *testing.T) {
	source := &countingSource{}
	w := NewCatalogWarmer(source, nil, 10*time.Millisecond, testLogger())

	require.NoError(t, w.Start(context.Background()))
	assert.True(t, w.IsRunning())
	assert.Eventually(t, func() bool { return source.count() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Stop())
	assert.False(t, w.IsRunning())
}

func TestRunOnceRecordsSuccess(t *testing.T) {
	rec := &recorder{}
	w := NewCatalogWarmer(&countingSource{}, rec, time.Hour, testLogger())

	w.RunOnce(context.Background())
	assert.Equal(t, []int{6}, rec.listings)
}

func TestRunOnceSkipsRecordOnFailure(t *testing.T) {
	rec := &recorder{}
	w := NewCatalogWarmer(&countingSource{err: errors.New("store down")}, rec, time.Hour, testLogger())

	w.RunOnce(context.Background())
	assert.Empty(t, rec.listings)
}

func TestWarmerSkipsFreshCache(t *testing.T) {
	source := &countingSource{}
	rec := &recorder{last: time.Now()}
	w := NewCatalogWarmer(source, rec, time.Hour, testLogger())

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	assert.Zero(t, source.count())

	w.RunOnce(context.Background())
	assert.Equal(t, 1, source.count())
}

func TestWarmerWarmsStaleCache(t *testing.T) {
	source := &countingSource{}
	rec := &recorder{last: time.Now().Add(-time.Hour)}
	w := NewCatalogWarmer(source, rec, time.Hour, testLogger())

	require.NoError(t, w.Start(context.Background()))
	assert.Eventually(t, func() bool { return source.count() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, w.Stop())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []int{6}, rec.listings)
	assert.WithinDuration(t, time.Now(), rec.last, time.Second)
}
