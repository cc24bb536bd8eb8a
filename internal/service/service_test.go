package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/gamebuddy-app/internal/memory"
	"github.com/gamebuddy-app/internal/notification"
	"github.com/stretchr/testify/require"
)

const (
	richID     = "0b6c6f3e-4c1d-4a5e-9d55-2f1e4f7f0a01"
	friendlyID = "0b6c6f3e-4c1d-4a5e-9d55-2f1e4f7f0a02"
	veteranID  = "0b6c6f3e-4c1d-4a5e-9d55-2f1e4f7f0a03"

	freeAvatarID = "7d3a9a52-8f6c-4b1a-a0b4-1e2f3a4b5c01"
	crownID      = "7d3a9a52-8f6c-4b1a-a0b4-1e2f3a4b5c02"
	capeID       = "7d3a9a52-8f6c-4b1a-a0b4-1e2f3a4b5c03"
	swordID      = "7d3a9a52-8f6c-4b1a-a0b4-1e2f3a4b5c04"
	wingsID      = "7d3a9a52-8f6c-4b1a-a0b4-1e2f3a4b5c05"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification.Notification
	err  error
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

func (n *recordingNotifier) kinds() []notification.Kind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notification.Kind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.Kind)
	}
	return out
}

type fixture struct {
	svc      *ApplicationService
	gamers   *memory.GamerStore
	catalog  *memory.CatalogStore
	messages *memory.MessageStore
	notifier *recordingNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		gamers:   memory.NewGamerStore(),
		catalog:  memory.NewCatalogStore(),
		messages: memory.NewMessageStore(),
		notifier: &recordingNotifier{},
	}

	require.NoError(t, f.catalog.UpsertAchievements(ctx,
		domain.Achievement{ID: richID, Name: domain.AchievementRich, Value: 50, Description: "Buy three items"},
		domain.Achievement{ID: friendlyID, Name: domain.AchievementFriendly, Value: 20, Description: "Make a friend"},
		domain.Achievement{ID: veteranID, Name: "Veteran", Value: 10, Description: "Play for a year"},
	))
	require.NoError(t, f.catalog.UpsertAvatars(ctx,
		domain.Avatar{ID: freeAvatarID, Image: "free.png"},
		domain.Avatar{ID: crownID, Image: "crown.png", Special: true, Price: 100},
		domain.Avatar{ID: capeID, Image: "cape.png", Special: true, Price: 30},
		domain.Avatar{ID: swordID, Image: "sword.png", Special: true, Price: 20},
		domain.Avatar{ID: wingsID, Image: "wings.png", Special: true, Price: 10},
	))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewApplicationService(f.gamers, f.catalog, f.messages, logger)
	f.svc.SetNotifier(f.notifier)
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		fixed = fixed.Add(time.Second)
		return fixed
	}
	return f
}

func (f *fixture) addGamer(t *testing.T, id, username string, mutate ...func(*domain.Gamer)) {
	t.Helper()
	g := domain.NewGamer(id, username, username+"@example.com")
	g.AvatarID = freeAvatarID
	for _, m := range mutate {
		m(g)
	}
	require.NoError(t, f.gamers.Save(context.Background(), g))
}

func (f *fixture) gamer(t *testing.T, id string) *domain.Gamer {
	t.Helper()
	g, err := f.gamers.FindByID(context.Background(), id)
	require.NoError(t, err)
	return g
}

// failingCache fails every call
type failingCache struct{}

func (failingCache) Get(context.Context, string, any) (bool, error) {
	return false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, any) error {
	return errors.New("cache down")
}
