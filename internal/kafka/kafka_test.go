package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProducerPublishesJSON(t *testing.T) {
	mock := mocks.NewSyncProducer(t, sarama.NewConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(value []byte) error {
		var n notification.Notification
		if err := json.Unmarshal(value, &n); err != nil {
			return err
		}
		if n.GamerID != "g-1" || n.Kind != notification.KindFriendAccepted {
			return fmt.Errorf("unexpected notification %+v", n)
		}
		return nil
	})

	p := NewProducerWithClient(mock, "notifications", testLogger())
	err := p.Deliver(context.Background(), notification.Notification{
		GamerID: "g-1",
		Title:   "Friend request accepted",
		Kind:    notification.KindFriendAccepted,
	})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}

func TestProducerReportsFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, sarama.NewConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducerWithClient(mock, "notifications", testLogger())
	err := p.Deliver(context.Background(), notification.Notification{GamerID: "g-1"})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestDecode(t *testing.T) {
	n, err := decode([]byte(`{"gamerId":"g-7","title":"hi","kind":"achievement"}`))
	require.NoError(t, err)
	assert.Equal(t, "g-7", n.GamerID)
	assert.Equal(t, notification.KindAchievement, n.Kind)

	_, err = decode([]byte(`{"title":"no one"}`))
	assert.ErrorIs(t, err, errInvalidNotification)

	_, err = decode([]byte(`not json`))
	assert.Error(t, err)
}

func testConsumer(sink notification.Sink) *Consumer {
	cfg := &config.KafkaConfig{RetryAttempts: 3, RetryDelay: time.Millisecond}
	return newConsumer(cfg, sink, nil, testLogger())
}

func TestHandleRetriesSink(t *testing.T) {
	calls := 0
	c := testConsumer(notification.SinkFunc(func(_ context.Context, n notification.Notification) error {
		calls++
		if calls < 2 {
			return errors.New("busy")
		}
		return nil
	}))

	require.NoError(t, c.handle([]byte(`{"gamerId":"g-1"}`), nil))
	assert.Equal(t, 2, calls)
}

func TestHandleDropsOfflineAndInvalid(t *testing.T) {
	calls := 0
	c := testConsumer(notification.SinkFunc(func(_ context.Context, n notification.Notification) error {
		calls++
		return fmt.Errorf("hub: %w", notification.ErrRecipientOffline)
	}))

	assert.NoError(t, c.handle([]byte(`{"gamerId":"g-1"}`), nil))
	assert.Equal(t, 1, calls)

	assert.NoError(t, c.handle([]byte(`garbage`), nil))
	assert.Equal(t, 1, calls)
}

func TestHandleReturnsPersistentFailure(t *testing.T) {
	c := testConsumer(notification.SinkFunc(func(context.Context, notification.Notification) error {
		return io.ErrClosedPipe
	}))

	assert.ErrorIs(t, c.handle([]byte(`{"gamerId":"g-1"}`), nil), io.ErrClosedPipe)
}

// fakeGroup fails the first failures Consume calls, then runs sessions
// that last until the context is cancelled
type fakeGroup struct {
	mu       sync.Mutex
	failures int
	calls    int
	closed   bool
	errs     chan error
}

func newFakeGroup(failures int) *fakeGroup {
	return &fakeGroup{failures: failures, errs: make(chan error)}
}

func (g *fakeGroup) Consume(ctx context.Context, _ []string, handler sarama.ConsumerGroupHandler) error {
	g.mu.Lock()
	g.calls++
	fail := g.calls <= g.failures
	g.mu.Unlock()

	if fail {
		return sarama.ErrOutOfBrokers
	}
	if err := handler.Setup(nil); err != nil {
		return err
	}
	<-ctx.Done()
	return handler.Cleanup(nil)
}

func (g *fakeGroup) Errors() <-chan error { return g.errs }

func (g *fakeGroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func (g *fakeGroup) Pause(map[string][]int32) {}

func (g *fakeGroup) Resume(map[string][]int32) {}

func (g *fakeGroup) PauseAll() {}

func (g *fakeGroup) ResumeAll() {}

func (g *fakeGroup) state() (int, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls, g.closed
}

func startAsync(c *Consumer) <-chan error {
	done := make(chan error, 1)
	go func() { done <- c.Start() }()
	return done
}

func TestStartSurvivesUnreachableBrokerAtBoot(t *testing.T) {
	group := newFakeGroup(2)
	cfg := &config.KafkaConfig{Topic: "notifications", RetryDelay: time.Millisecond, StartTimeout: 5 * time.Second}
	c := newConsumer(cfg, notification.SinkFunc(func(context.Context, notification.Notification) error { return nil }), group, testLogger())

	select {
	case err := <-startAsync(c):
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start blocked after the group recovered")
	}

	calls, _ := group.state()
	assert.Equal(t, 3, calls)

	require.NoError(t, c.Stop())
	_, closed := group.state()
	assert.True(t, closed)
}

func TestStartTimesOutWhenGroupNeverJoins(t *testing.T) {
	group := newFakeGroup(1 << 30)
	cfg := &config.KafkaConfig{Topic: "notifications", RetryDelay: time.Millisecond, StartTimeout: 50 * time.Millisecond}
	c := newConsumer(cfg, notification.SinkFunc(func(context.Context, notification.Notification) error { return nil }), group, testLogger())

	select {
	case err := <-startAsync(c):
		assert.ErrorIs(t, err, errStartTimeout)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not give up")
	}

	_, closed := group.state()
	assert.True(t, closed)
}
