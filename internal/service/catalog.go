package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/gamebuddy-app/internal/domain"
)

// Catalog cache keys
const (
	cacheKeyKeywords     = "keywords"
	cacheKeyGames        = "games"
	cacheKeyPopularGames = "games:popular"
	cacheKeyAvatars      = "avatars"
	cacheKeyAchievements = "achievements"
	cacheKeyMarketplace  = "marketplace"
)

// cachedList serves key from the cache when possible and fills it from load
// otherwise. Cache failures are logged and fall through to the store.
func cachedList[T any](ctx context.Context, s *ApplicationService, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if s.cache != nil {
		var hit []T
		ok, err := s.cache.Get(ctx, key, &hit)
		if err != nil {
			s.logger.Warn("catalog cache read failed", "key", key, "error", err)
		} else if ok {
			return hit, nil
		}
	}

	out, err := load(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out); err != nil {
			s.logger.Warn("catalog cache write failed", "key", key, "error", err)
		}
	}
	return out, nil
}

// Keywords lists every keyword
func (s *ApplicationService) Keywords(ctx context.Context) ([]domain.Keyword, error) {
	out, err := cachedList(ctx, s, cacheKeyKeywords, s.catalog.Keywords)
	if err != nil {
		return nil, fmt.Errorf("listing keywords: %w", err)
	}
	return out, nil
}

// Games lists every game
func (s *ApplicationService) Games(ctx context.Context) ([]domain.Game, error) {
	out, err := cachedList(ctx, s, cacheKeyGames, s.catalog.Games)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return out, nil
}

// PopularGames lists popular games, best rated first
func (s *ApplicationService) PopularGames(ctx context.Context) ([]domain.Game, error) {
	out, err := cachedList(ctx, s, cacheKeyPopularGames, s.loadPopularGames)
	if err != nil {
		return nil, fmt.Errorf("listing popular games: %w", err)
	}
	return out, nil
}

// Avatars lists the full avatar catalog
func (s *ApplicationService) Avatars(ctx context.Context) ([]domain.Avatar, error) {
	out, err := cachedList(ctx, s, cacheKeyAvatars, s.catalog.Avatars)
	if err != nil {
		return nil, fmt.Errorf("listing avatars: %w", err)
	}
	return out, nil
}

// Achievements lists the achievement catalog
func (s *ApplicationService) Achievements(ctx context.Context) ([]domain.Achievement, error) {
	out, err := cachedList(ctx, s, cacheKeyAchievements, s.catalog.Achievements)
	if err != nil {
		return nil, fmt.Errorf("listing achievements: %w", err)
	}
	return out, nil
}

// Marketplace lists the special avatars for sale
func (s *ApplicationService) Marketplace(ctx context.Context) ([]domain.MarketplaceItem, error) {
	out, err := cachedList(ctx, s, cacheKeyMarketplace, s.loadMarketplace)
	if err != nil {
		return nil, fmt.Errorf("listing marketplace: %w", err)
	}
	return out, nil
}

func (s *ApplicationService) loadPopularGames(ctx context.Context) ([]domain.Game, error) {
	games, err := s.catalog.PopularGames(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(games, func(i, j int) bool { return games[i].AvgVote > games[j].AvgVote })
	return games, nil
}

func (s *ApplicationService) loadMarketplace(ctx context.Context) ([]domain.MarketplaceItem, error) {
	avatars, err := s.catalog.SpecialAvatars(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]domain.MarketplaceItem, 0, len(avatars))
	for _, a := range avatars {
		items = append(items, domain.MarketplaceItem{
			ID:    a.ID,
			Image: a.Image,
			Price: strconv.Itoa(a.Price),
		})
	}
	return items, nil
}

// WarmCatalog reloads every cached listing from the store. It returns the
// number of listings refreshed.
func (s *ApplicationService) WarmCatalog(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}

	loaders := []struct {
		key  string
		load func(context.Context) (any, error)
	}{
		{cacheKeyKeywords, func(ctx context.Context) (any, error) { return s.catalog.Keywords(ctx) }},
		{cacheKeyGames, func(ctx context.Context) (any, error) { return s.catalog.Games(ctx) }},
		{cacheKeyPopularGames, func(ctx context.Context) (any, error) { return s.loadPopularGames(ctx) }},
		{cacheKeyAvatars, func(ctx context.Context) (any, error) { return s.catalog.Avatars(ctx) }},
		{cacheKeyAchievements, func(ctx context.Context) (any, error) { return s.catalog.Achievements(ctx) }},
		{cacheKeyMarketplace, func(ctx context.Context) (any, error) { return s.loadMarketplace(ctx) }},
	}

	warmed := 0
	for _, l := range loaders {
		value, err := l.load(ctx)
		if err != nil {
			return warmed, fmt.Errorf("loading %s: %w", l.key, err)
		}
		if err := s.cache.Set(ctx, l.key, value); err != nil {
			return warmed, fmt.Errorf("caching %s: %w", l.key, err)
		}
		warmed++
	}
	return warmed, nil
}

// avatarImages maps avatar id to image
func (s *ApplicationService) avatarImages(ctx context.Context) (map[string]string, error) {
	avatars, err := s.Avatars(ctx)
	if err != nil {
		return nil, err
	}
	images := make(map[string]string, len(avatars))
	for _, a := range avatars {
		images[a.ID] = a.Image
	}
	return images, nil
}

// UserInfo returns the public profile of a gamer
func (s *ApplicationService) UserInfo(ctx context.Context, userID string) (*domain.UserInfo, error) {
	g, err := s.gamers.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	images, err := s.avatarImages(ctx)
	if err != nil {
		return nil, err
	}
	games, err := s.Games(ctx)
	if err != nil {
		return nil, err
	}
	keywords, err := s.Keywords(ctx)
	if err != nil {
		return nil, err
	}
	achievements, err := s.Achievements(ctx)
	if err != nil {
		return nil, err
	}
	communities, err := s.catalog.Communities(ctx, g.JoinedCommunities.Slice())
	if err != nil {
		return nil, fmt.Errorf("loading communities: %w", err)
	}
	friends, err := s.summaries(ctx, g.Friends)
	if err != nil {
		return nil, err
	}

	info := &domain.UserInfo{
		ID:                g.ID,
		Username:          g.Username,
		Email:             g.Email,
		Age:               g.Age,
		Country:           g.Country,
		Gender:            g.Gender,
		Coin:              g.Coin,
		Avatar:            images[g.AvatarID],
		Games:             []domain.Game{},
		Keywords:          []domain.Keyword{},
		Achievements:      []domain.Achievement{},
		JoinedCommunities: make([]domain.CommunityView, 0, len(communities)),
		Friends:           friends,
	}
	for _, c := range communities {
		info.JoinedCommunities = append(info.JoinedCommunities, domain.CommunityView{
			ID:      c.ID,
			Name:    c.Name,
			Avatar:  c.Avatar,
			IsOwner: c.OwnerID == g.ID,
		})
	}
	for _, game := range games {
		if g.LikedGames.Has(game.ID) {
			info.Games = append(info.Games, game)
		}
	}
	for _, k := range keywords {
		if g.Keywords.Has(k.ID) {
			info.Keywords = append(info.Keywords, k)
		}
	}
	for _, a := range achievements {
		if g.EarnedAchievements.Has(a.ID) {
			info.Achievements = append(info.Achievements, a)
		}
	}
	return info, nil
}
