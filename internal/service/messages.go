package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/google/uuid"
)

// SaveMessage appends a message from self to the receiver
func (s *ApplicationService) SaveMessage(ctx context.Context, selfID string, req domain.MessageRequest) (*domain.Message, error) {
	if strings.TrimSpace(req.ReceiverID) == "" {
		return nil, domain.ErrInvalidRequest
	}
	if req.ReceiverID == selfID {
		return nil, domain.ErrSameIDs
	}
	if _, err := s.gamers.FindByID(ctx, req.ReceiverID); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:          uuid.New().String(),
		SenderID:    selfID,
		ReceiverID:  req.ReceiverID,
		MessageBody: req.Message,
		Date:        domain.FormatMessageTime(s.now()),
		Read:        req.Read,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("saving message: %w", err)
	}
	return msg, nil
}

// Conversation returns the messages between self and peer, oldest first
func (s *ApplicationService) Conversation(ctx context.Context, selfID, peerID string) ([]domain.Message, error) {
	if selfID == peerID {
		return nil, domain.ErrSameIDs
	}
	msgs, err := s.messages.Conversation(ctx, selfID, peerID)
	if err != nil {
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}

// Inbox returns one row per conversation partner with the latest message,
// newest conversation first
func (s *ApplicationService) Inbox(ctx context.Context, selfID string) ([]domain.InboxEntry, error) {
	peers, err := s.messages.DistinctPeers(ctx, selfID)
	if err != nil {
		return nil, fmt.Errorf("loading inbox peers: %w", err)
	}

	entries := make([]domain.InboxEntry, 0, len(peers))
	if len(peers) == 0 {
		return entries, nil
	}

	gamers, err := s.gamers.FindByIDs(ctx, peers)
	if err != nil {
		return nil, fmt.Errorf("loading inbox gamers: %w", err)
	}
	byID := make(map[string]*domain.Gamer, len(gamers))
	for _, g := range gamers {
		byID[g.ID] = g
	}
	images, err := s.avatarImages(ctx)
	if err != nil {
		return nil, err
	}

	for _, peer := range peers {
		latest, err := s.messages.Latest(ctx, selfID, peer)
		if err != nil {
			return nil, fmt.Errorf("loading latest message: %w", err)
		}
		if latest == nil {
			continue
		}
		entry := domain.InboxEntry{
			UserID:          peer,
			LastMessage:     latest.MessageBody,
			LastMessageTime: latest.Date,
		}
		if g, ok := byID[peer]; ok {
			entry.Username = g.Username
			entry.Avatar = images[g.AvatarID]
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastMessageTime > entries[j].LastMessageTime
	})
	return entries, nil
}
