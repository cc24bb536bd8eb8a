package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MessageStore keeps direct messages in a MongoDB collection
type MessageStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMessageStore connects to MongoDB and opens the message collection
func NewMessageStore(ctx context.Context, cfg *config.MongoConfig, logger *slog.Logger) (*MessageStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	// Test connection
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging mongo: %w", err)
	}

	return &MessageStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger,
	}, nil
}

// Close disconnects the client
func (s *MessageStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the conversation queries rely on
func (s *MessageStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender", Value: 1}, {Key: "receiver", Value: 1}, {Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "receiver", Value: 1}, {Key: "date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("creating message indexes: %w", err)
	}
	s.logger.Info("message indexes ensured")
	return nil
}

// conversationFilter matches messages exchanged by a and b in either direction
func conversationFilter(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"sender": a, "receiver": b},
		bson.M{"sender": b, "receiver": a},
	}}
}

func byDate(order int) bson.D {
	return bson.D{{Key: "date", Value: order}}
}

// Insert appends a message
func (s *MessageStore) Insert(ctx context.Context, msg *domain.Message) error {
	if _, err := s.collection.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("inserting message: %w", err)
	}
	return nil
}

// Conversation returns messages between a and b, oldest first
func (s *MessageStore) Conversation(ctx context.Context, a, b string) ([]domain.Message, error) {
	cursor, err := s.collection.Find(ctx, conversationFilter(a, b), options.Find().SetSort(byDate(1)))
	if err != nil {
		return nil, fmt.Errorf("finding conversation: %w", err)
	}
	defer cursor.Close(ctx)

	messages := []domain.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decoding conversation: %w", err)
	}
	return messages, nil
}

// DistinctPeers returns receivers of self's messages and senders of messages
// to self
func (s *MessageStore) DistinctPeers(ctx context.Context, self string) ([]string, error) {
	receivers, err := s.collection.Distinct(ctx, "receiver", bson.M{"sender": self})
	if err != nil {
		return nil, fmt.Errorf("finding receivers: %w", err)
	}
	senders, err := s.collection.Distinct(ctx, "sender", bson.M{"receiver": self})
	if err != nil {
		return nil, fmt.Errorf("finding senders: %w", err)
	}
	return mergePeers(receivers, senders), nil
}

func mergePeers(lists ...[]interface{}) []string {
	peers := domain.NewIDSet()
	for _, list := range lists {
		for _, v := range list {
			if id, ok := v.(string); ok {
				peers.Add(id)
			}
		}
	}
	return peers.Slice()
}

// Latest returns the newest message between a and b, nil when none
func (s *MessageStore) Latest(ctx context.Context, a, b string) (*domain.Message, error) {
	var msg domain.Message
	err := s.collection.FindOne(ctx, conversationFilter(a, b), options.FindOne().SetSort(byDate(-1))).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding latest message: %w", err)
	}
	return &msg, nil
}
