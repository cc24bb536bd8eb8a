package mongo

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestConversationFilter(t *testing.T) {
	want := bson.M{"$or": bson.A{
		bson.M{"sender": "a", "receiver": "b"},
		bson.M{"sender": "b", "receiver": "a"},
	}}
	assert.Equal(t, want, conversationFilter("a", "b"))
}

func TestMergePeers(t *testing.T) {
	got := mergePeers(
		[]interface{}{"c", "b"},
		[]interface{}{"b", "a", 42},
	)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func newTestStore(t *testing.T) *MessageStore {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	cfg := &config.MongoConfig{
		URI:            uri,
		Database:       "gamebuddy_test",
		Collection:     "messages_" + uuid.New().String()[:8],
		ConnectTimeout: 2 * time.Second,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := NewMessageStore(context.Background(), cfg, logger)
	if err != nil {
		t.Skipf("mongo not available: %v", err)
	}
	t.Cleanup(func() {
		_ = store.collection.Drop(context.Background())
		_ = store.Close(context.Background())
	})
	return store
}

func TestMessageStoreQueries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.EnsureIndexes(ctx))

	insert := func(from, to, body, date string) {
		require.NoError(t, s.Insert(ctx, &domain.Message{
			ID: uuid.New().String(), SenderID: from, ReceiverID: to, MessageBody: body, Date: date,
		}))
	}
	insert("a", "b", "first", "2024/01/01 10:00:00")
	insert("b", "a", "second", "2024/01/01 10:00:05")
	insert("c", "a", "other", "2024/01/01 09:00:00")

	conv, err := s.Conversation(ctx, "a", "b")
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, "first", conv[0].MessageBody)

	peers, err := s.DistinctPeers(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, peers)

	latest, err := s.Latest(ctx, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "second", latest.MessageBody)

	none, err := s.Latest(ctx, "a", "z")
	require.NoError(t, err)
	assert.Nil(t, none)
}
