package seed

import (
	"context"
	"testing"

	"github.com/gamebuddy-app/internal/domain"
	"github.com/gamebuddy-app/internal/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProvidesTriggerAchievements(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalogStore()
	require.NoError(t, Load(ctx, catalog))

	for _, name := range []string{domain.AchievementRich, domain.AchievementFriendly} {
		a, err := catalog.AchievementByName(ctx, name)
		require.NoError(t, err, name)
		assert.True(t, domain.ValidUUID(a.ID))
	}

	special, err := catalog.SpecialAvatars(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(special), domain.RichThreshold)
}

func TestLoadIsIdempotent(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalogStore()
	require.NoError(t, Load(ctx, catalog))
	require.NoError(t, Load(ctx, catalog))

	games, err := catalog.Games(ctx)
	require.NoError(t, err)
	assert.Len(t, games, len(Games))
}

func TestDemoGamers(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGamerStore()
	require.NoError(t, LoadDemoGamers(ctx, store))
	assert.Equal(t, len(DemoGamers()), store.Len())

	bob, err := store.FindByEmail(ctx, "bob@gamebuddy.local")
	require.NoError(t, err)
	assert.True(t, bob.LikedGames.Has(Games[1].ID))
	assert.True(t, bob.JoinedCommunities.Has(Communities[1].ID))
}

func TestSeededCommunitiesHaveDemoOwners(t *testing.T) {
	ctx := context.Background()
	catalog := memory.NewCatalogStore()
	require.NoError(t, Load(ctx, catalog))

	owners := domain.NewIDSet()
	for _, g := range DemoGamers() {
		owners.Add(g.ID)
	}
	ids := make([]string, 0, len(Communities))
	for _, c := range Communities {
		assert.True(t, domain.ValidUUID(c.ID), c.Name)
		assert.True(t, owners.Has(c.OwnerID), c.Name)
		ids = append(ids, c.ID)
	}

	loaded, err := catalog.Communities(ctx, ids)
	require.NoError(t, err)
	assert.Len(t, loaded, len(Communities))
}
