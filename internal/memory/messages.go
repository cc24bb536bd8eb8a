package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/gamebuddy-app/internal/domain"
)

// MessageStore is an append-only in-memory message log
type MessageStore struct {
	mu       sync.RWMutex
	messages []domain.Message
}

// NewMessageStore creates an empty message log
func NewMessageStore() *MessageStore {
	return &MessageStore{}
}

func (m *MessageStore) Insert(_ context.Context, msg *domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	return nil
}

func between(msg domain.Message, a, b string) bool {
	return (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a)
}

// Conversation returns messages between a and b sorted by date ascending
func (m *MessageStore) Conversation(_ context.Context, a, b string) ([]domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []domain.Message{}
	for _, msg := range m.messages {
		if between(msg, a, b) {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// DistinctPeers returns everyone self has exchanged a message with
func (m *MessageStore) DistinctPeers(_ context.Context, self string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	peers := domain.NewIDSet()
	for _, msg := range m.messages {
		if msg.SenderID == self {
			peers.Add(msg.ReceiverID)
		}
		if msg.ReceiverID == self {
			peers.Add(msg.SenderID)
		}
	}
	return peers.Slice(), nil
}

// Latest returns the newest message between a and b
func (m *MessageStore) Latest(_ context.Context, a, b string) (*domain.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *domain.Message
	for i := range m.messages {
		msg := m.messages[i]
		if !between(msg, a, b) {
			continue
		}
		if latest == nil || msg.Date >= latest.Date {
			found := msg
			latest = &found
		}
	}
	return latest, nil
}
