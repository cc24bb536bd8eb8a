package service

import (
	"context"
	"fmt"

	"github.com/gamebuddy-app/internal/domain"
)

// BuyItem buys a special avatar with coins
func (s *ApplicationService) BuyItem(ctx context.Context, selfID, avatarID string) error {
	self, err := s.gamers.FindByID(ctx, selfID)
	if err != nil {
		return err
	}
	if !domain.ValidUUID(avatarID) {
		return domain.ErrAvatarNotFound
	}
	avatar, err := s.catalog.AvatarByID(ctx, avatarID)
	if err != nil {
		return err
	}

	if !avatar.Special || self.BoughtAvatars.Has(avatar.ID) {
		return domain.ErrAvatarAlreadyOwned
	}
	if self.Coin < avatar.Price {
		return domain.ErrCoinNotEnough
	}

	self.Coin -= avatar.Price
	self.BoughtAvatars.Add(avatar.ID)

	var unlocked *domain.Achievement
	if self.BoughtAvatars.Len() == domain.RichThreshold {
		unlocked, err = s.unlockOnce(ctx, self, domain.AchievementRich)
		if err != nil {
			return err
		}
	}

	if err := s.save(ctx, self); err != nil {
		return fmt.Errorf("buying item: %w", err)
	}

	s.logger.Info("item bought", "gamer_id", self.ID, "avatar_id", avatar.ID, "coin", self.Coin)
	s.announceUnlock(ctx, self, unlocked)
	return nil
}

// ListAvatars returns every free avatar plus the ones the caller bought
func (s *ApplicationService) ListAvatars(ctx context.Context, selfID string) ([]domain.Avatar, error) {
	self, err := s.gamers.FindByID(ctx, selfID)
	if err != nil {
		return nil, err
	}
	avatars, err := s.Avatars(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Avatar, 0, len(avatars))
	for _, a := range avatars {
		if !a.Special || self.BoughtAvatars.Has(a.ID) {
			out = append(out, a)
		}
	}
	return out, nil
}
