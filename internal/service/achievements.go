package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/gamebuddy-app/internal/notification"
)

// unlockOnce marks the named achievement earned on g unless it already is.
// It returns the unlocked achievement, or nil when nothing changed. The
// caller persists g and then announces the unlock.
func (s *ApplicationService) unlockOnce(ctx context.Context, g *domain.Gamer, name string) (*domain.Achievement, error) {
	achievement, err := s.catalog.AchievementByName(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrAchievementNotFound) {
			s.logger.Error("trigger achievement missing from catalog", "achievement", name)
		}
		return nil, err
	}
	if g.EarnedAchievements.Has(achievement.ID) {
		return nil, nil
	}

	g.EarnedAchievements.Add(achievement.ID)
	return achievement, nil
}

// announceUnlock records and notifies a persisted unlock
func (s *ApplicationService) announceUnlock(ctx context.Context, g *domain.Gamer, a *domain.Achievement) {
	if a == nil {
		return
	}
	s.metrics.AchievementUnlocked(a.Name)
	s.logger.Info("achievement unlocked", "gamer_id", g.ID, "achievement", a.Name)
	s.notify(ctx, notification.AchievementUnlocked(g, a))
}

// ListAchievements returns the achievement catalog with the caller's
// progress
func (s *ApplicationService) ListAchievements(ctx context.Context, selfID string) ([]domain.AchievementView, error) {
	self, err := s.gamers.FindByID(ctx, selfID)
	if err != nil {
		return nil, err
	}
	achievements, err := s.Achievements(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.AchievementView, 0, len(achievements))
	for _, a := range achievements {
		out = append(out, domain.AchievementView{
			Achievement: a,
			Earned:      self.EarnedAchievements.Has(a.ID),
			Collected:   self.CollectedAchievements.Has(a.ID),
		})
	}
	return out, nil
}

// CollectAchievement credits the coin reward of an earned achievement
func (s *ApplicationService) CollectAchievement(ctx context.Context, selfID, achievementID string) error {
	self, err := s.gamers.FindByID(ctx, selfID)
	if err != nil {
		return err
	}
	if !domain.ValidUUID(achievementID) {
		return domain.ErrAchievementNotFound
	}
	achievement, err := s.catalog.AchievementByID(ctx, achievementID)
	if err != nil {
		return err
	}

	if !self.EarnedAchievements.Has(achievement.ID) {
		return domain.ErrAchievementNotEarned
	}
	if self.CollectedAchievements.Has(achievement.ID) {
		return domain.ErrAlreadyCollected
	}

	self.Coin += achievement.Value
	self.CollectedAchievements.Add(achievement.ID)
	if err := s.save(ctx, self); err != nil {
		return fmt.Errorf("collecting achievement: %w", err)
	}

	s.logger.Info("achievement collected", "gamer_id", self.ID, "achievement", achievement.Name, "coin", self.Coin)
	return nil
}
