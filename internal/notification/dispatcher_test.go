package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingSink struct {
	mu        sync.Mutex
	delivered []Notification
	failures  int
}

func (s *recordingSink) Deliver(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("sink unavailable")
	}
	s.delivered = append(s.delivered, n)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func testConfig() *config.NotificationConfig {
	return &config.NotificationConfig{
		QueueSize:     4,
		Workers:       2,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
		SendTimeout:   time.Second,
	}
}

func TestDispatcherDeliversWithRetry(t *testing.T) {
	sink := &recordingSink{failures: 2}
	d := NewDispatcher(sink, testConfig(), testLogger())
	d.Start()

	gamer := domain.NewGamer("g-1", "alice", "alice@example.com")
	require.NoError(t, d.Send(context.Background(), FriendRequest(gamer, domain.NewGamer("g-2", "bob", "bob@example.com"))))

	d.Stop()
	assert.Equal(t, 1, sink.count())
	assert.Equal(t, "bob wants to be your friend", sink.delivered[0].Body)
}

func TestDispatcherQueueFull(t *testing.T) {
	cfg := testConfig()
	cfg.QueueSize = 1
	d := NewDispatcher(&recordingSink{}, cfg, testLogger())

	gamer := domain.NewGamer("g-1", "alice", "alice@example.com")
	n := FriendAccepted(gamer, gamer)

	require.NoError(t, d.Send(context.Background(), n))
	assert.ErrorIs(t, d.Send(context.Background(), n), ErrQueueFull)
}

func TestDispatcherRejectsAfterStop(t *testing.T) {
	d := NewDispatcher(&recordingSink{}, testConfig(), testLogger())
	d.Start()
	d.Stop()

	gamer := domain.NewGamer("g-1", "alice", "alice@example.com")
	assert.ErrorIs(t, d.Send(context.Background(), FriendAccepted(gamer, gamer)), ErrStopped)
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	err := Retry(3, time.Millisecond, nil, func() error {
		calls++
		return io.ErrUnexpectedEOF
	})

	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestAchievementTemplate(t *testing.T) {
	token := "device-token"
	g := domain.NewGamer("g-1", "alice", "alice@example.com")
	g.FCMToken = &token

	n := AchievementUnlocked(g, &domain.Achievement{Name: domain.AchievementRich})

	assert.Equal(t, KindAchievement, n.Kind)
	assert.Equal(t, "device-token", n.Token)
	assert.Contains(t, n.Body, "alice")
	assert.Contains(t, n.Body, domain.AchievementRich)
}

func TestRetryStopsWhenRecipientOffline(t *testing.T) {
	calls := 0
	err := Retry(5, time.Millisecond, nil, func() error {
		calls++
		return fmt.Errorf("hub: %w", ErrRecipientOffline)
	})

	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, err, ErrRecipientOffline)
}
