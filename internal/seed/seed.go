// Package seed holds the reference catalog every deployment starts from.
package seed

import (
	"context"
	"fmt"

	"github.com/gamebuddy-app/internal/domain"
)

// CatalogWriter is implemented by the postgres repository and the memory
// catalog store
type CatalogWriter interface {
	UpsertAchievements(ctx context.Context, items ...domain.Achievement) error
	UpsertAvatars(ctx context.Context, items ...domain.Avatar) error
	UpsertGames(ctx context.Context, items ...domain.Game) error
	UpsertKeywords(ctx context.Context, items ...domain.Keyword) error
	UpsertCommunities(ctx context.Context, items ...domain.Community) error
}

// GamerWriter persists gamer aggregates
type GamerWriter interface {
	Save(ctx context.Context, gamers ...*domain.Gamer) error
}

// Achievements includes both achievements unlocked by the service itself
var Achievements = []domain.Achievement{
	{ID: "9a1e0c52-6f0b-4c59-8f0e-3d5a1c000001", Name: domain.AchievementRich, Value: 50, Description: "Buy three items from the marketplace"},
	{ID: "9a1e0c52-6f0b-4c59-8f0e-3d5a1c000002", Name: domain.AchievementFriendly, Value: 20, Description: "Make your first friend"},
	{ID: "9a1e0c52-6f0b-4c59-8f0e-3d5a1c000003", Name: "Night Owl", Value: 10, Description: "Play after midnight"},
}

var Avatars = []domain.Avatar{
	{ID: "4c2f7b8e-1d3a-4e5f-9a6b-7c8d00000001", Image: "avatars/rookie.png"},
	{ID: "4c2f7b8e-1d3a-4e5f-9a6b-7c8d00000002", Image: "avatars/gamer.png"},
	{ID: "4c2f7b8e-1d3a-4e5f-9a6b-7c8d00000003", Image: "avatars/knight.png", Special: true, Price: 20},
	{ID: "4c2f7b8e-1d3a-4e5f-9a6b-7c8d00000004", Image: "avatars/wizard.png", Special: true, Price: 30},
	{ID: "4c2f7b8e-1d3a-4e5f-9a6b-7c8d00000005", Image: "avatars/dragon.png", Special: true, Price: 50},
	{ID: "4c2f7b8e-1d3a-4e5f-9a6b-7c8d00000006", Image: "avatars/crown.png", Special: true, Price: 100},
}

var Games = []domain.Game{
	{ID: "valorant", Name: "Valorant", Icon: "games/valorant.png", Category: "FPS", AvgVote: 4.4, Description: "Tactical 5v5 shooter", Popular: true},
	{ID: "lol", Name: "League of Legends", Icon: "games/lol.png", Category: "MOBA", AvgVote: 4.2, Description: "Team strategy battle arena", Popular: true},
	{ID: "minecraft", Name: "Minecraft", Icon: "games/minecraft.png", Category: "Sandbox", AvgVote: 4.7, Description: "Build and survive", Popular: true},
	{ID: "chess", Name: "Chess", Icon: "games/chess.png", Category: "Board", AvgVote: 4.0, Description: "The classic"},
	{ID: "rocket-league", Name: "Rocket League", Icon: "games/rocket-league.png", Category: "Sports", AvgVote: 3.9, Description: "Soccer with rocket cars"},
}

var Keywords = []domain.Keyword{
	{ID: "competitive", Name: "Competitive", Description: "Plays to win"},
	{ID: "casual", Name: "Casual", Description: "Plays for fun"},
	{ID: "mic", Name: "Mic On", Description: "Talks during games"},
	{ID: "night", Name: "Night Player", Description: "Online late"},
}

// Communities are owned by the demo gamers
var Communities = []domain.Community{
	{ID: "7d3e9f10-2b4c-4a5d-8e6f-a1b200000001", Name: "Night Raiders", Description: "Late night squads", Avatar: "communities/raiders.png", OwnerID: "demo-1"},
	{ID: "7d3e9f10-2b4c-4a5d-8e6f-a1b200000002", Name: "Block Builders", Description: "Minecraft servers and builds", Avatar: "communities/builders.png", OwnerID: "demo-3"},
}

// Load upserts the reference catalog
func Load(ctx context.Context, w CatalogWriter) error {
	if err := w.UpsertAchievements(ctx, Achievements...); err != nil {
		return fmt.Errorf("seeding achievements: %w", err)
	}
	if err := w.UpsertAvatars(ctx, Avatars...); err != nil {
		return fmt.Errorf("seeding avatars: %w", err)
	}
	if err := w.UpsertGames(ctx, Games...); err != nil {
		return fmt.Errorf("seeding games: %w", err)
	}
	if err := w.UpsertKeywords(ctx, Keywords...); err != nil {
		return fmt.Errorf("seeding keywords: %w", err)
	}
	if err := w.UpsertCommunities(ctx, Communities...); err != nil {
		return fmt.Errorf("seeding communities: %w", err)
	}
	return nil
}

// DemoGamers returns a few gamers for local runs. Each one starts with the
// free avatar and some coins.
func DemoGamers() []*domain.Gamer {
	names := []string{"alice", "bob", "carol"}
	gamers := make([]*domain.Gamer, 0, len(names))
	for i, name := range names {
		g := domain.NewGamer(fmt.Sprintf("demo-%d", i+1), name, name+"@gamebuddy.local")
		g.Coin = 200
		g.AvatarID = Avatars[0].ID
		g.Country = "TR"
		g.Age = 20 + i
		g.LikedGames.Add(Games[i].ID)
		g.Keywords.Add(Keywords[i].ID)
		g.JoinedCommunities.Add(Communities[i%len(Communities)].ID)
		gamers = append(gamers, g)
	}
	return gamers
}

// LoadDemoGamers saves DemoGamers
func LoadDemoGamers(ctx context.Context, w GamerWriter) error {
	if err := w.Save(ctx, DemoGamers()...); err != nil {
		return fmt.Errorf("seeding gamers: %w", err)
	}
	return nil
}
