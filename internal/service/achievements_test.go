package service

import (
	"context"
	"testing"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/gamebuddy-app/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectAchievement(t *testing.T) {
	f := newFixture(t)
	f.addGamer(t, "a", "alice", func(g *domain.Gamer) {
		g.Coin = 5
		g.EarnedAchievements.Add(veteranID)
	})
	ctx := context.Background()

	require.NoError(t, f.svc.CollectAchievement(ctx, "a", veteranID))
	a := f.gamer(t, "a")
	assert.Equal(t, 15, a.Coin)
	assert.True(t, a.CollectedAchievements.Has(veteranID))

	assert.ErrorIs(t, f.svc.CollectAchievement(ctx, "a", veteranID), domain.ErrAlreadyCollected)
	assert.Equal(t, 15, f.gamer(t, "a").Coin)
}

func TestCollectAchievementErrors(t *testing.T) {
	f := newFixture(t)
	f.addGamer(t, "a", "alice")
	ctx := context.Background()

	tests := []struct {
		name    string
		gamerID string
		id      string
		wantErr error
	}{
		{"unknown gamer", "ghost", veteranID, domain.ErrUserNotFound},
		{"malformed id", "a", "not-a-uuid", domain.ErrAchievementNotFound},
		{"unknown id", "a", "11111111-2222-3333-4444-555555555555", domain.ErrAchievementNotFound},
		{"not earned", "a", veteranID, domain.ErrAchievementNotEarned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.svc.CollectAchievement(ctx, tt.gamerID, tt.id), tt.wantErr)
		})
	}
}

func TestListAchievementsFlags(t *testing.T) {
	f := newFixture(t)
	f.addGamer(t, "a", "alice", func(g *domain.Gamer) {
		g.EarnedAchievements.Add(richID)
		g.EarnedAchievements.Add(veteranID)
		g.CollectedAchievements.Add(veteranID)
	})

	views, err := f.svc.ListAchievements(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, views, 3)

	byID := make(map[string]domain.AchievementView)
	for _, v := range views {
		byID[v.ID] = v
	}
	assert.True(t, byID[richID].Earned)
	assert.False(t, byID[richID].Collected)
	assert.False(t, byID[friendlyID].Earned)
	assert.True(t, byID[veteranID].Collected)
}

func TestMissingTriggerAchievementFailsOperation(t *testing.T) {
	f := newFixture(t)
	f.addGamer(t, "a", "alice")
	f.addGamer(t, "b", "bob")
	ctx := context.Background()

	// a catalog without the friendship achievement
	f.svc.catalog = emptyAchievements{f.svc.catalog}
	require.NoError(t, f.svc.SendFriendRequest(ctx, "b", "a"))

	err := f.svc.AcceptFriendRequest(ctx, "a", "b")
	assert.ErrorIs(t, err, domain.ErrAchievementNotFound)
	assert.False(t, f.gamer(t, "a").Friends.Has("b"), "nothing persisted")
	assert.NotContains(t, f.notifier.kinds(), notification.KindFriendAccepted)
}

type emptyAchievements struct {
	CatalogStore
}

func (emptyAchievements) AchievementByName(context.Context, string) (*domain.Achievement, error) {
	return nil, domain.ErrAchievementNotFound
}
