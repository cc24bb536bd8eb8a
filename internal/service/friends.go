package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/gamebuddy-app/internal/notification"
)

// SendFriendRequest records self as waiting on other. Checks run in a fixed
// order so the reported error is deterministic.
func (s *ApplicationService) SendFriendRequest(ctx context.Context, selfID, otherID string) error {
	self, other, err := s.loadPair(ctx, selfID, otherID)
	if err != nil {
		return err
	}

	switch {
	case other.BlockedFriends.Has(self.ID):
		return domain.ErrUserBlockedYou
	case self.BlockedFriends.Has(other.ID):
		return domain.ErrUserBlocked
	case other.Friends.Has(self.ID):
		return domain.ErrAlreadyFriends
	case other.WaitingFriends.Has(self.ID):
		return domain.ErrAlreadySentRequest
	}

	other.WaitingFriends.Add(self.ID)
	if err := s.save(ctx, other); err != nil {
		return fmt.Errorf("sending friend request: %w", err)
	}

	s.logger.Info("friend request sent", "from", self.ID, "to", other.ID)
	s.notify(ctx, notification.FriendRequest(other, self))
	return nil
}

// AcceptFriendRequest links self and other as friends
func (s *ApplicationService) AcceptFriendRequest(ctx context.Context, selfID, otherID string) error {
	self, other, err := s.loadPair(ctx, selfID, otherID)
	if err != nil {
		return err
	}

	if self.Friends.Has(other.ID) {
		return domain.ErrFriendAlreadyExists
	}
	if !self.WaitingFriends.Has(other.ID) {
		return domain.ErrFriendNoRequest
	}

	self.WaitingFriends.Remove(other.ID)
	// a crossed request from self is answered by the same accept
	other.WaitingFriends.Remove(self.ID)
	self.Friends.Add(other.ID)
	other.Friends.Add(self.ID)

	var unlocked *domain.Achievement
	if self.Friends.Len() == 1 {
		unlocked, err = s.unlockOnce(ctx, self, domain.AchievementFriendly)
		if err != nil {
			return err
		}
	}

	if err := s.save(ctx, self, other); err != nil {
		return fmt.Errorf("accepting friend request: %w", err)
	}

	s.logger.Info("friend request accepted", "gamer_id", self.ID, "friend_id", other.ID)
	s.notify(ctx, notification.FriendAccepted(other, self))
	s.announceUnlock(ctx, self, unlocked)
	return nil
}

// RejectFriendRequest drops other's pending request
func (s *ApplicationService) RejectFriendRequest(ctx context.Context, selfID, otherID string) error {
	self, other, err := s.loadPair(ctx, selfID, otherID)
	if err != nil {
		return err
	}

	if !self.WaitingFriends.Has(other.ID) {
		return domain.ErrFriendNoRequest
	}

	self.WaitingFriends.Remove(other.ID)
	if err := s.save(ctx, self); err != nil {
		return fmt.Errorf("rejecting friend request: %w", err)
	}
	return nil
}

// RemoveFriend unlinks self and other
func (s *ApplicationService) RemoveFriend(ctx context.Context, selfID, otherID string) error {
	self, other, err := s.loadPair(ctx, selfID, otherID)
	if err != nil {
		return err
	}

	if !self.Friends.Has(other.ID) {
		return domain.ErrFriendNotFound
	}

	self.Friends.Remove(other.ID)
	other.Friends.Remove(self.ID)
	if err := s.save(ctx, self, other); err != nil {
		return fmt.Errorf("removing friend: %w", err)
	}
	return nil
}

// BlockUser blocks other, dropping any friendship and pending request
// between the two. Both aggregates are persisted together.
func (s *ApplicationService) BlockUser(ctx context.Context, selfID, otherID string) error {
	self, other, err := s.loadPair(ctx, selfID, otherID)
	if err != nil {
		return err
	}

	if self.BlockedFriends.Has(other.ID) {
		return domain.ErrUserAlreadyBlocked
	}

	self.Friends.Remove(other.ID)
	other.Friends.Remove(self.ID)
	self.WaitingFriends.Remove(other.ID)
	other.WaitingFriends.Remove(self.ID)
	self.BlockedFriends.Add(other.ID)

	if err := s.save(ctx, self, other); err != nil {
		return fmt.Errorf("blocking user: %w", err)
	}
	s.logger.Info("user blocked", "gamer_id", self.ID, "blocked_id", other.ID)
	return nil
}

// UnblockUser lifts self's block on other
func (s *ApplicationService) UnblockUser(ctx context.Context, selfID, otherID string) error {
	self, other, err := s.loadPair(ctx, selfID, otherID)
	if err != nil {
		return err
	}

	if !self.BlockedFriends.Has(other.ID) {
		return domain.ErrUserNotBlocked
	}

	self.BlockedFriends.Remove(other.ID)
	if err := s.save(ctx, self); err != nil {
		return fmt.Errorf("unblocking user: %w", err)
	}
	return nil
}

// ListFriends returns self's friends
func (s *ApplicationService) ListFriends(ctx context.Context, selfID string) ([]domain.GamerSummary, error) {
	return s.listRelation(ctx, selfID, func(g *domain.Gamer) domain.IDSet { return g.Friends })
}

// ListWaitingFriends returns the gamers waiting on self
func (s *ApplicationService) ListWaitingFriends(ctx context.Context, selfID string) ([]domain.GamerSummary, error) {
	return s.listRelation(ctx, selfID, func(g *domain.Gamer) domain.IDSet { return g.WaitingFriends })
}

// ListBlockedFriends returns the gamers self blocked
func (s *ApplicationService) ListBlockedFriends(ctx context.Context, selfID string) ([]domain.GamerSummary, error) {
	return s.listRelation(ctx, selfID, func(g *domain.Gamer) domain.IDSet { return g.BlockedFriends })
}

func (s *ApplicationService) listRelation(ctx context.Context, selfID string, pick func(*domain.Gamer) domain.IDSet) ([]domain.GamerSummary, error) {
	self, err := s.gamers.FindByID(ctx, selfID)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, pick(self))
}

// summaries resolves ids to listing rows sorted by username
func (s *ApplicationService) summaries(ctx context.Context, ids domain.IDSet) ([]domain.GamerSummary, error) {
	out := make([]domain.GamerSummary, 0, ids.Len())
	if ids.Len() == 0 {
		return out, nil
	}

	gamers, err := s.gamers.FindByIDs(ctx, ids.Slice())
	if err != nil {
		return nil, fmt.Errorf("loading gamers: %w", err)
	}
	images, err := s.avatarImages(ctx)
	if err != nil {
		return nil, err
	}

	for _, g := range gamers {
		out = append(out, domain.GamerSummary{
			ID:           g.ID,
			Username:     g.Username,
			Age:          g.Age,
			Country:      g.Country,
			Avatar:       images[g.AvatarID],
			LastModified: g.LastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
